package cmd

import (
	"context"
	"fmt"
	"log"

	"coop-inventory/core/config"
	"coop-inventory/core/database"
	"coop-inventory/core/logger"
	"coop-inventory/core/storage"
	"coop-inventory/feature/count"
	"coop-inventory/feature/export"
	"coop-inventory/feature/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exportCmd pushes a session's reconciled totals to object storage without
// running the HTTP server, for devices operated headless after a count.
var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Upload a session's totals to object storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return err
		}

		sessions := session.NewService(db, logg)
		counts := count.NewService(db, sessions, nil, cfg.Device, logg)
		svc := export.NewService(client, cfg.Storage, counts, logg)

		key, err := svc.Upload(context.Background(), sessionID)
		if err != nil {
			return err
		}

		logg.Info("Totals exported",
			zap.String("session_id", sessionID),
			zap.String("object", key),
		)
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(exportCmd)
}
