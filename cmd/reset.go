package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var resetConfirm bool

var resetCmd = &cobra.Command{
	Use:   "reset-event",
	Short: "Wipe every ledger, quest, submission and daily claim",
	Long: "reset-event truncates all event tables so a new event can start from zero.\n" +
		"It cannot be undone and requires --yes.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !resetConfirm {
			return errors.New("refusing to reset without --yes")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openDB(cmd.Context(), cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.ResetEventTables(cmd.Context()); err != nil {
			return fmt.Errorf("event reset failed: %w", err)
		}

		slog.Info("Event reset completed",
			slog.String("type", "sys"),
			slog.String("driver", db.Driver()),
		)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirm, "yes", false, "confirm the reset")
	rootCmd.AddCommand(resetCmd)
}
