package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prose66/InvestigationWorkbench/internal/ingest"
	"github.com/prose66/InvestigationWorkbench/internal/mapper"
)

var previewLimit int

var previewCmd = &cobra.Command{
	Use:   "preview <case-id> <source> <file>",
	Short: "Show how a file would translate, without ingesting it",
	Long: `Translate the first rows of an export file with the mapper that
ingestion would resolve for the source, and report which source fields map
into the unified schema and which overflow to extras. Nothing is persisted.`,
	Args: cobra.ExactArgs(3),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntVarP(&previewLimit, "limit", "n", 5, "rows to preview")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	caseID, source, filePath := args[0], args[1], args[2]

	layout := layoutFor(cfg)
	result, err := ingest.Preview(filePath, source, layout.CaseDir(caseID), &mapper.Resolver{}, previewLimit)
	if err != nil {
		return fmt.Errorf("previewing %s: %w", filePath, err)
	}

	for _, line := range ingest.FormatPreview(result) {
		fmt.Println(line)
	}
	return nil
}
