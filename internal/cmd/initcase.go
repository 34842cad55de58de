package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prose66/InvestigationWorkbench/internal/casefile"
)

var initCaseTitle string

var initCaseCmd = &cobra.Command{
	Use:   "init-case <case-id>",
	Short: "Create a case directory and its database",
	Long: `Create the case folder skeleton (raw/, exports/, mappers/, notes.md),
initialize the database schema, and register the case. Running it again on an
existing case is harmless.`,
	Args: cobra.ExactArgs(1),
	RunE: runInitCase,
}

func init() {
	initCaseCmd.Flags().StringVar(&initCaseTitle, "title", "", "human-readable case title")
	rootCmd.AddCommand(initCaseCmd)
}

func runInitCase(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	caseID := args[0]

	layout := layoutFor(cfg)
	if err := casefile.InitCase(layout, caseID, initCaseTitle, cfg.Driver, cfg.PostgresDSN); err != nil {
		return fmt.Errorf("initializing case %s: %w", caseID, err)
	}

	fmt.Printf("Initialized case %s at %s\n", caseID, layout.CaseDir(caseID))
	return nil
}
