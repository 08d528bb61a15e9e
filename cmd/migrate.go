package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// migrateCmd creates the tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		if err := a.service().Migrate(cmd.Context()); err != nil {
			return err
		}
		a.log.Info("Migration completed")
		return nil
	},
}

// integrityCmd verifies tables and the bucket layout.
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check database tables and bucket layout",
	Long:  `Checks that the tables have every expected column and, when storage is enabled, that the bucket has its import and export prefixes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		logg := a.log

		report, err := a.service().CheckIntegrity(cmd.Context(), fixFlag)
		if err != nil {
			return err
		}

		for table, tbl := range report.Tables {
			if tbl.Status != "ok" {
				logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
			}
		}
		if st := report.Storage; st != nil && len(st.MissingPrefixes) > 0 {
			if st.Fixed {
				logg.Info("Bucket prefixes created", zap.Strings("prefixes", st.MissingPrefixes))
			} else {
				logg.Warn("Missing bucket prefixes", zap.Strings("prefixes", st.MissingPrefixes))
				logg.Info("Run with --fix to create missing prefixes.")
			}
		}
		for _, e := range report.Errors {
			logg.Error("Inspection Error", zap.String("error", e))
		}

		if report.Matched {
			logg.Info("Integrity check passed.")
		}
		return nil
	},
}

func init() {
	integrityCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing bucket and prefixes")
	RootCmd.AddCommand(migrateCmd, integrityCmd)
}
