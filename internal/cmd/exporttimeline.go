package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prose66/InvestigationWorkbench/internal/export"
)

var exportFormat string

var exportTimelineCmd = &cobra.Command{
	Use:   "export-timeline <case-id>",
	Short: "Export the case timeline ordered by event timestamp",
	Long: `Write every normalized event for a case, joined to its query-run
metadata and ordered by event_ts, into the case's exports directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runExportTimeline,
}

func init() {
	exportTimelineCmd.Flags().StringVar(&exportFormat, "format", export.FormatCSV, "output format: csv, ndjson")
	rootCmd.AddCommand(exportTimelineCmd)
}

func runExportTimeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	caseID := args[0]

	layout := layoutFor(cfg)
	db, err := layout.OpenStore(caseID, cfg.Driver, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	path, rows, err := export.Timeline(db, caseID, layout.ExportsDir(caseID), exportFormat)
	if err != nil {
		return fmt.Errorf("exporting timeline: %w", err)
	}

	fmt.Printf("Exported %d event(s) to %s\n", rows, path)
	return nil
}
