package cmd

import (
	"fmt"
	"os"

	"coop-inventory/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "coop-inventory",
	Short: "Cooperative Inventory Counting Service",
	Long: `Coop Inventory runs the device-side service for cooperative offline
inventory counts: an append-only count-event log, peer sync over wireless
bursts or scannable packets, and order-independent merge of results.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Report through the standard structured logger; console format and
		// debug level match what an operator expects from a CLI tool.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
