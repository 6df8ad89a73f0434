package xlsx

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/robalyx/igsheet/internal/export/types"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the only sheet in every rendered workbook.
const SheetName = "Sheet1"

// Styling constants for rendered workbooks.
const (
	FontFamily     = "Segoe UI"
	HeaderFontSize = 11
	DataFontSize   = 10
	HeaderFill     = "1F4E78"
	HeaderColor    = "FFFFFF"
	BorderColor    = "000000"

	// Column widths are padded and scaled from the longest value, then capped.
	WidthPadding = 4
	WidthScale   = 1.1
	MaxWidth     = 50
)

// Extension is the file extension for xlsx exports.
const Extension = "xlsx"

// Exporter handles exporting record groups to styled xlsx files.
type Exporter struct {
	outDir string
}

// New creates a new xlsx exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export renders each group and writes it to outDir under the name returned by name.
func (e *Exporter) Export(groups []*types.Group, name func(types.Kind) string) error {
	for _, group := range groups {
		data, err := Render(group)
		if err != nil {
			return fmt.Errorf("failed to render %s group: %w", group.Kind, err)
		}

		filename := name(group.Kind) + "." + Extension
		if err := os.WriteFile(filepath.Join(e.outDir, filename), data, 0o644); err != nil {
			return fmt.Errorf("failed to write xlsx file %s: %w", filename, err)
		}
	}

	return nil
}

// Render builds a single-sheet workbook for the group and returns its bytes.
// Row 1 holds the group's schema, followed by one row per record.
func Render(group *types.Group) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, dataStyle, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	schema := group.Kind.Schema()
	widths := make([]int, len(schema))

	// Write header
	for col, header := range schema {
		if err := setCell(f, col+1, 1, header); err != nil {
			return nil, err
		}
		widths[col] = utf8.RuneCountInString(header)
	}

	// Write each record
	for i, record := range group.Records {
		for col, value := range record.Values() {
			if err := setCell(f, col+1, i+2, value); err != nil {
				return nil, err
			}
			widths[col] = max(widths[col], utf8.RuneCountInString(value))
		}
	}

	// Apply styles to header and data ranges
	lastCol, err := excelize.ColumnNumberToName(len(schema))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve column name: %w", err)
	}

	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	if n := len(group.Records); n > 0 {
		bottomRight := fmt.Sprintf("%s%d", lastCol, n+1)
		if err := f.SetCellStyle(SheetName, "A2", bottomRight, dataStyle); err != nil {
			return nil, fmt.Errorf("failed to style data rows: %w", err)
		}
	}

	// Size columns to their content
	for col, length := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve column name: %w", err)
		}

		if err := f.SetColWidth(SheetName, name, name, ColumnWidth(length)); err != nil {
			return nil, fmt.Errorf("failed to set width of column %s: %w", name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return buf.Bytes(), nil
}

// ColumnWidth converts the longest character count in a column to a column width.
func ColumnWidth(maxLength int) float64 {
	return min(float64(maxLength+WidthPadding)*WidthScale, MaxWidth)
}

// setCell writes a string value at the 1-based column and row.
func setCell(f *excelize.File, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to resolve cell name: %w", err)
	}

	if err := f.SetCellStr(SheetName, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}

	return nil
}

// newStyles registers the header and data cell styles on the workbook.
func newStyles(f *excelize.File) (int, int, error) {
	border := []excelize.Border{
		{Type: "left", Color: BorderColor, Style: 1},
		{Type: "right", Color: BorderColor, Style: 1},
		{Type: "top", Color: BorderColor, Style: 1},
		{Type: "bottom", Color: BorderColor, Style: 1},
	}
	alignment := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Family: FontFamily,
			Size:   HeaderFontSize,
			Color:  HeaderColor,
		},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{HeaderFill}, Pattern: 1},
		Alignment: alignment,
		Border:    border,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create header style: %w", err)
	}

	dataStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: FontFamily, Size: DataFontSize},
		Alignment: alignment,
		Border:    border,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create data style: %w", err)
	}

	return headerStyle, dataStyle, nil
}
