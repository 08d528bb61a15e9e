package cmd

import (
	"fmt"
	"os"

	"refdata-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configDir is where .env and the refdata config file are looked up.
var configDir string

// RootCmd is the refdata-manager command; it does nothing on its own.
var RootCmd = &cobra.Command{
	Use:   "refdata-manager",
	Short: "Reference Data Manager",
	Long: `Refdata Manager issues human-readable codes for reference records and
reconciles bulk workbook imports against the records already stored.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}

	// CLI errors are printed for humans: console encoding, ISO8601 timestamps.
	l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
	if logErr != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	l.Error("command failed", zap.Error(err))
	_ = l.Sync()
	os.Exit(1)
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding .env and refdata.yaml")
}
