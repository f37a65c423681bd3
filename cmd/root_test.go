package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grandcafe/floorplan/config"
	"github.com/grandcafe/floorplan/models"
	"github.com/grandcafe/floorplan/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	utils.InitLogger()
	return &config.Config{
		Port:       "0",
		DBDriver:   "sqlite",
		DBDSN:      filepath.Join(t.TempDir(), "floorplan.db"),
		AppBaseURL: "http://localhost:8080",
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := RootCommand(testConfig(t))

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "qr-sheet"}, names)
}

func TestMigrateAndQRSheet(t *testing.T) {
	cfg := testConfig(t)

	root := RootCommand(cfg)
	root.SetArgs([]string{"migrate", "--prune-changes", "24h"})
	require.NoError(t, root.Execute())

	db, err := config.InitDB(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Table{TableNumber: "T1", Shape: "round", Status: "available", IsActive: true}).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	out := filepath.Join(t.TempDir(), "sheet.pdf")
	root = RootCommand(cfg)
	root.SetArgs([]string{"qr-sheet", "--out", out, "--base-url", "https://cafe.example.com"})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, len(data) > 100)
	assert.Equal(t, "%PDF-", string(data[:5]))
	assert.Equal(t, "https://cafe.example.com", cfg.AppBaseURL)
}

func TestUnknownDriverFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBDriver = "postgres"

	root := RootCommand(cfg)
	root.SetArgs([]string{"migrate"})
	assert.Error(t, root.Execute())
}
