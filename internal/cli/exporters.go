package cli

import (
	"context"
	"fmt"

	"expensetracker/internal/config"
	"expensetracker/internal/export"
	gsheet "expensetracker/internal/sheets/google"
)

// BuildExporters returns the exporters enabled by EXPORT_FORMATS, in the
// order they are listed.
func BuildExporters(ctx context.Context, cfg *config.Config) ([]export.Exporter, error) {
	var exporters []export.Exporter
	for _, format := range cfg.ExportFormats {
		switch format {
		case config.FormatJSON:
			exporters = append(exporters, export.NewJSONExporter(cfg.ExportDir))
		case config.FormatXLSX:
			exporters = append(exporters, export.NewXLSXExporter(cfg.ExportDir))
		case config.FormatSheets:
			sheets, err := gsheet.New(ctx, gsheet.Config{
				SpreadsheetID:   cfg.GoogleSpreadsheetID,
				SheetName:       cfg.GoogleSheetName,
				CredentialsFile: cfg.GoogleCredentialsFile,
				CredentialsJSON: cfg.GoogleCredentialsJSON,
			})
			if err != nil {
				return nil, fmt.Errorf("google sheets exporter: %w", err)
			}
			exporters = append(exporters, sheets)
		default:
			return nil, fmt.Errorf("unknown export format %q", format)
		}
	}
	if len(exporters) == 0 {
		return nil, export.ErrNoExporters
	}
	return exporters, nil
}
