package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/grandcafe/floorplan/config"
	"github.com/grandcafe/floorplan/database"
	"github.com/grandcafe/floorplan/utils"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootCommand creates and returns the root command
func RootCommand(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "floorplan",
		Short:         "Restaurant floor plan back office",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "database driver (mysql or sqlite)")
	rootCmd.PersistentFlags().StringVar(&cfg.DBDSN, "db-dsn", cfg.DBDSN, "database DSN")

	rootCmd.AddCommand(
		serveCommand(cfg),
		migrateCommand(cfg),
		qrSheetCommand(cfg),
	)

	return rootCmd
}

// openDB connects and migrates; every subcommand needs both.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.SetJWTSecret(cfg.JWTSecret)

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
