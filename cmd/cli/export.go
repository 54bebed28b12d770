package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sanvivo/price-dashboard/internal/dashboard"
	"github.com/sanvivo/price-dashboard/internal/export"
)

var (
	exportView      viewFlags
	exportFormat    string
	exportTimestamp string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the visible rows as CSV or XLSX",
	Long: `Fetch the current snapshot, or the one given by --timestamp, apply the
selected filters and write the visible rows to sanvivo_prices_YYYY-MM-DD.<ext>
in the configured export directory.`,
	Example: `  dashboard export
  dashboard export --format xlsx --only-changes
  dashboard export --timestamp "2024-05-01 10:00:00"`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportView.register(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "File format: csv or xlsx (default from config)")
	exportCmd.Flags().StringVar(&exportTimestamp, "timestamp", "", "Export a stored snapshot instead of the current one")
}

func runExport(cmd *cobra.Command, args []string) error {
	format := exportFormat
	if format == "" {
		format = cfg.Export.Format
	}
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("unknown export format %q (use csv or xlsx)", format)
	}

	if err := exportView.apply(cmd); err != nil {
		return err
	}

	var action dashboard.Action = dashboard.FetchCurrent{}
	if exportTimestamp != "" {
		action = dashboard.LoadHistorical{Timestamp: exportTimestamp}
	}
	if _, err := app.fetch(action); err != nil {
		return err
	}

	rows := app.runtime.Visible()
	var data []byte
	switch format {
	case "xlsx":
		content, err := export.PriceRowsXLSX(rows)
		if err != nil {
			return err
		}
		data = content
	default:
		content, ok := export.PriceRowsCSV(rows)
		if !ok {
			return export.ErrNothingToExport
		}
		data = []byte(content)
	}

	if err := os.MkdirAll(cfg.Export.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(cfg.Export.Dir, export.FileName(export.FilePrefix, time.Now(), format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Info().Str("file", path).Int("rows", len(rows)).Msg("Exported prices")
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
