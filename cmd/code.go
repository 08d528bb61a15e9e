package cmd

import (
	"encoding/json"
	"fmt"

	"refdata-manager/core/config"
	"refdata-manager/core/schema"
	"refdata-manager/feature/refdata"

	"github.com/spf13/cobra"
)

var (
	codeResource string
	codePattern  string
	codeParent   string
	codeCount    int
)

// codeCmd is the parent command for code operations.
var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Generate and inspect reference codes",
}

// codeNextCmd allocates codes.
var codeNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Allocate the next code(s) of a resource type",
	Long: `Allocates codes from the resource's counter. Allocated numbers are never reissued.

Examples:
  code next --resource docType
  code next --resource regulationClause --parent RG-202403-000001 --count 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		svc := a.service()
		if err := svc.Migrate(cmd.Context()); err != nil {
			return err
		}

		codes, err := svc.GenerateCodes(cmd.Context(), codeResource, schema.Pattern(codePattern), codeCount, codeParent)
		if err != nil {
			return err
		}
		for _, c := range codes {
			fmt.Println(c)
		}
		return nil
	},
}

// codeParseCmd decomposes a code without touching the database.
var codeParseCmd = &cobra.Command{
	Use:   "parse <code>",
	Short: "Split a code into its parts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		registry, err := schema.Load(cfg.Schema)
		if err != nil {
			return fmt.Errorf("failed to load schemas: %w", err)
		}
		parsed, ok := refdata.NewService(nil, registry, nil, cfg.Storage, nil).ParseCode(args[0])
		if !ok {
			return fmt.Errorf("unrecognized code %q", args[0])
		}
		data, err := json.MarshalIndent(parsed, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	codeNextCmd.Flags().StringVarP(&codeResource, "resource", "r", "", "Resource type (e.g. docType)")
	codeNextCmd.Flags().StringVarP(&codePattern, "pattern", "p", "", "primary or child (default: the resource's pattern)")
	codeNextCmd.Flags().StringVar(&codeParent, "parent", "", "Parent code for child patterns")
	codeNextCmd.Flags().IntVarP(&codeCount, "count", "n", 1, "Number of codes to allocate")
	_ = codeNextCmd.MarkFlagRequired("resource")

	codeCmd.AddCommand(codeNextCmd, codeParseCmd)
	RootCmd.AddCommand(codeCmd)
}
