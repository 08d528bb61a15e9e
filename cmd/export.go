package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportResource string
	exportOut      string
	exportUpload   bool
	exportTemplate bool
)

// exportCmd renders stored records, or an empty template, as a workbook.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export reference records to a workbook",
	Long: `Writes every record of a resource type to a workbook laid out by the
resource's schema. With --template only the header row is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := bootstrap()
		if err != nil {
			return err
		}
		svc := a.service()

		if exportUpload {
			if exportTemplate {
				return fmt.Errorf("--template cannot be uploaded")
			}
			objectName, err := svc.ExportToStorage(ctx, exportResource)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			a.log.Info("Export uploaded", zap.String("bucket", a.cfg.Storage.Bucket), zap.String("object", objectName))
			return nil
		}

		var buf []byte
		if exportTemplate {
			buf, err = svc.Template(exportResource)
		} else {
			buf, err = svc.ExportResource(ctx, exportResource)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		out := exportOut
		if out == "" {
			out = exportResource + ".xlsx"
			if exportTemplate {
				out = exportResource + "-template.xlsx"
			}
		}
		if err := os.WriteFile(out, buf, 0644); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		a.log.Info("Export written", zap.String("file", out), zap.Int("bytes", len(buf)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportResource, "resource", "r", "", "Resource type to export (e.g. docType)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default <resource>.xlsx)")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false, "Upload to the bucket's export prefix instead of writing a file")
	exportCmd.Flags().BoolVar(&exportTemplate, "template", false, "Write an empty import template")
	_ = exportCmd.MarkFlagRequired("resource")

	RootCmd.AddCommand(exportCmd)
}
