package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/grandcafe/floorplan/config"
	"github.com/grandcafe/floorplan/qrsheet"
	"github.com/grandcafe/floorplan/services"
	"github.com/grandcafe/floorplan/utils"
	"github.com/spf13/cobra"
)

func qrSheetCommand(cfg *config.Config) *cobra.Command {
	var out, title string

	cmd := &cobra.Command{
		Use:   "qr-sheet",
		Short: "Write the printable QR card sheet for all active tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			cards, err := services.QRCards(db, cfg.AppBaseURL)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()

			w := bufio.NewWriter(f)
			if err := qrsheet.Render(w, cards, qrsheet.Options{Title: title, Now: time.Now()}); err != nil {
				return err
			}
			if err := w.Flush(); err != nil {
				return err
			}

			utils.InfoLogger.Printf("Wrote %d QR cards on %d pages to %s", len(cards), qrsheet.PageCount(len(cards)), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "table-qr-codes.pdf", "output PDF file")
	cmd.Flags().StringVar(&title, "title", "Table QR Codes", "sheet title")
	cmd.Flags().StringVar(&cfg.AppBaseURL, "base-url", cfg.AppBaseURL, "base URL of the digital menu")
	return cmd
}
