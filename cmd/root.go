package cmd

import (
	"fmt"
	"os"

	"dict-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "dict-manager",
	Short: "Game dictionary manager",
	Long: `Dict Manager keeps per-game Japanese IME dictionaries in a local database,
mirrors them to a directory of CSV files and exports vendor dictionaries
for Google, Microsoft and ATOK IMEs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console at debug level for readable timestamps
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
