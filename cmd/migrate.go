package cmd

import (
	"time"

	"github.com/grandcafe/floorplan/config"
	"github.com/grandcafe/floorplan/database"
	"github.com/grandcafe/floorplan/utils"
	"github.com/spf13/cobra"
)

func migrateCommand(cfg *config.Config) *cobra.Command {
	var pruneOlderThan time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			if pruneOlderThan <= 0 {
				return nil
			}
			pruned, err := database.PruneChanges(db, pruneOlderThan)
			if err != nil {
				return err
			}
			utils.InfoLogger.Printf("Removed %d processed floor changes older than %s", pruned, pruneOlderThan)
			return nil
		},
	}
	cmd.Flags().DurationVar(&pruneOlderThan, "prune-changes", 0, "also delete processed floor changes older than this (e.g. 168h)")
	return cmd
}
