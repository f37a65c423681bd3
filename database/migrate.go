package database

import (
	"time"

	"github.com/grandcafe/floorplan/models"
	"github.com/grandcafe/floorplan/utils"
	"gorm.io/gorm"
)

// Models lists every table the service owns, in creation order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.FloorSection{},
		&models.Table{},
		&models.Notification{},
		&models.FloorChange{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

// PruneChanges removes processed floor changes older than the cutoff.
func PruneChanges(db *gorm.DB, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := db.Where("processed = ? AND changed_at < ?", true, cutoff).Delete(&models.FloorChange{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		utils.InfoLogger.Printf("Pruned %d processed floor changes", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
