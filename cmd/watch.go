package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"refdata-manager/core/reconcile"
	"refdata-manager/feature/refdata"

	"github.com/spf13/cobra"
)

var (
	watchResource string
	watchMode     string
	watchDryRun   bool
	watchDebounce time.Duration
)

// watchCmd imports workbooks as they are dropped into a directory.
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Import workbooks dropped into a directory",
	Long: `Watches a directory and imports every .xlsx file written to it. The
resource type comes from --resource or, when omitted, from the file name
prefix (docType-march.xlsx imports as docType). Imported files and their
JSON results are moved to the processed/ subdirectory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := reconcile.ParseMode(watchMode)
		if err != nil {
			return err
		}

		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.log.Sync()

		svc := a.service()
		if err := svc.Migrate(cmd.Context()); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := refdata.NewWatcher(svc, refdata.WatchConfig{
			Dir:          args[0],
			ResourceType: watchResource,
			Mode:         mode,
			DryRun:       watchDryRun,
			Debounce:     watchDebounce,
		})
		return w.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchResource, "resource", "r", "", "Resource type for every file (default: from the file name)")
	watchCmd.Flags().StringVarP(&watchMode, "mode", "m", string(reconcile.ModeUpsert), "upsert, insertOnly or updateOnly")
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "Classify rows without writing")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before a file is imported")

	RootCmd.AddCommand(watchCmd)
}
