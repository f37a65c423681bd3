package database

import (
	"strings"
	"testing"
	"time"

	"github.com/grandcafe/floorplan/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestMigrateCreatesTables(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}

	// running it twice is fine
	assert.NoError(t, Migrate(db))
}

func TestPruneChanges(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	old := time.Now().Add(-48 * time.Hour)
	rows := []models.FloorChange{
		{EntityType: models.EntityTables, RecordID: 1, ActionType: models.ChangeUpdate, ChangedAt: old, Processed: true},
		{EntityType: models.EntityTables, RecordID: 2, ActionType: models.ChangeUpdate, ChangedAt: old, Processed: false},
		{EntityType: models.EntityTables, RecordID: 3, ActionType: models.ChangeUpdate, ChangedAt: time.Now(), Processed: true},
	}
	require.NoError(t, db.Create(&rows).Error)

	pruned, err := PruneChanges(db, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	var left []models.FloorChange
	require.NoError(t, db.Order("record_id ASC").Find(&left).Error)
	require.Len(t, left, 2)
	assert.Equal(t, uint(2), left[0].RecordID)
	assert.Equal(t, uint(3), left[1].RecordID)
}
