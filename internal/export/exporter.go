package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robalyx/igsheet/internal/export/csv"
	"github.com/robalyx/igsheet/internal/export/sqlite"
	"github.com/robalyx/igsheet/internal/export/types"
	"github.com/robalyx/igsheet/internal/export/xlsx"
	"go.uber.org/zap"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format represents a supported export format.
type Format string

const (
	FormatXLSX   Format = "xlsx"
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// TimestampLayout formats file timestamps as DD_MM_YYYY_HH_MM_SS_AM/PM.
const TimestampLayout = "02_01_2006_03_04_05_PM"

// FileSource names the origin of the records in exported file names.
const FileSource = "instagram"

// formatExporter writes groups in one file format.
type formatExporter interface {
	Export(groups []*types.Group, name func(types.Kind) string) error
}

// ParseFormats converts format names into formats, rejecting unknown names.
// An empty list selects xlsx only.
func ParseFormats(names []string) ([]Format, error) {
	if len(names) == 0 {
		return []Format{FormatXLSX}, nil
	}

	formats := make([]Format, 0, len(names))
	seen := make(map[Format]bool, len(names))

	for _, name := range names {
		format := Format(strings.ToLower(strings.TrimSpace(name)))

		switch format {
		case FormatXLSX, FormatCSV, FormatSQLite:
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
		}

		if !seen[format] {
			seen[format] = true
			formats = append(formats, format)
		}
	}

	return formats, nil
}

// Timestamp returns the file timestamp for now shifted by offset.
func Timestamp(now time.Time, offset time.Duration) string {
	return now.Add(offset).Format(TimestampLayout)
}

// BaseName returns the file name without extension for a kind and timestamp,
// e.g. number_instagram_14_10_2026_09_30_00_PM.
func BaseName(kind types.Kind, timestamp string) string {
	return fmt.Sprintf("%s_%s_%s", kind.FilePrefix(), FileSource, timestamp)
}

// FileName returns the xlsx attachment name for a kind and timestamp.
func FileName(kind types.Kind, timestamp string) string {
	return BaseName(kind, timestamp) + "." + xlsx.Extension
}

// Exporter writes classified groups to files in every selected format.
type Exporter struct {
	outDir    string
	timestamp string
	formats   []Format
	logger    *zap.Logger
}

// New creates a new exporter instance.
func New(outDir, timestamp string, formats []Format, logger *zap.Logger) *Exporter {
	return &Exporter{
		outDir:    outDir,
		timestamp: timestamp,
		formats:   formats,
		logger:    logger.Named("export"),
	}
}

// ExportAll exports the groups in all selected formats.
func (e *Exporter) ExportAll(groups []*types.Group) error {
	name := func(kind types.Kind) string {
		return BaseName(kind, e.timestamp)
	}

	for _, format := range e.formats {
		exporter, err := e.exporterFor(format)
		if err != nil {
			return err
		}

		if err := exporter.Export(groups, name); err != nil {
			return fmt.Errorf("failed to export %s: %w", format, err)
		}

		e.logger.Info("Exported groups",
			zap.String("format", string(format)),
			zap.Int("groups", len(groups)),
			zap.String("dir", e.outDir))
	}

	return nil
}

// exporterFor returns the exporter for a format.
func (e *Exporter) exporterFor(format Format) (formatExporter, error) {
	switch format {
	case FormatXLSX:
		return xlsx.New(e.outDir), nil
	case FormatCSV:
		return csv.New(e.outDir), nil
	case FormatSQLite:
		return sqlite.New(e.outDir), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
