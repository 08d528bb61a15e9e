package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"refdata-manager/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importResource string
	importMode     string
	importObject   string
	importDryRun   bool
	importJSON     bool
)

// importCmd reconciles a workbook with the stored records.
var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a workbook of reference records",
	Long: `Reconciles the rows of a workbook with the stored records of a resource type.

Rows without a code are assigned the next code. Row failures are reported
individually and never abort the batch.

Examples:
  # Preview an import without writing
  import docTypes.xlsx --resource docType --dry-run

  # Only create records, reject rows matching existing ones
  import docTypes.xlsx --resource docType --mode insertOnly

  # Import a workbook from the bucket
  import --object imports/docTypes.xlsx --resource docType`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if (len(args) == 0) == (importObject == "") {
			return fmt.Errorf("exactly one of a file argument or --object is required")
		}
		mode, err := reconcile.ParseMode(importMode)
		if err != nil {
			return err
		}

		a, err := bootstrap()
		if err != nil {
			return err
		}
		svc := a.service()
		if err := svc.Migrate(ctx); err != nil {
			return err
		}

		var result *reconcile.ImportResult
		if importObject != "" {
			result, err = svc.ImportObject(ctx, importObject, importResource, mode, importDryRun)
		} else {
			buf, readErr := os.ReadFile(args[0])
			if readErr != nil {
				return fmt.Errorf("failed to read workbook: %w", readErr)
			}
			result, err = svc.Import(ctx, buf, importResource, mode, importDryRun)
		}
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		if importJSON {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Println("\n=== Import Result ===")
		if result.IsDryRun {
			fmt.Println("(dry run, nothing was written)")
		}
		fmt.Printf("Rows: %d\n", result.Total())
		fmt.Printf("Created: %d\n", result.Created)
		fmt.Printf("Updated: %d\n", result.Updated)
		fmt.Printf("Failed: %d\n", result.Failed)
		for _, e := range result.Errors {
			fmt.Printf("  row %d [%s]: %s\n", e.Row, e.Field, e.Message)
		}
		for _, d := range result.DuplicateRows {
			fmt.Printf("  row %d duplicates row %d (%s)\n", d.Row, d.DuplicateOfRow, d.UniqueKey)
		}

		a.log.Info("Import completed",
			zap.String("resource", importResource),
			zap.String("mode", string(mode)),
			zap.Bool("dry_run", importDryRun),
			zap.Int("success", result.Success),
			zap.Int("failed", result.Failed),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importResource, "resource", "r", "", "Resource type of the workbook (e.g. docType)")
	importCmd.Flags().StringVarP(&importMode, "mode", "m", string(reconcile.ModeUpsert), "upsert, insertOnly or updateOnly")
	importCmd.Flags().StringVar(&importObject, "object", "", "Import an object from the bucket instead of a local file")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Classify rows without writing")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "Print the full result as JSON")
	_ = importCmd.MarkFlagRequired("resource")

	RootCmd.AddCommand(importCmd)
}
