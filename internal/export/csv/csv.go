package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robalyx/igsheet/internal/export/types"
)

// Extension is the file extension for csv exports.
const Extension = "csv"

// Exporter handles exporting record groups to csv files.
type Exporter struct {
	outDir string
}

// New creates a new csv exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export writes each group to its own csv file named by name.
func (e *Exporter) Export(groups []*types.Group, name func(types.Kind) string) error {
	for _, group := range groups {
		filename := name(group.Kind) + "." + Extension

		// Remove existing file if it exists
		path := filepath.Join(e.outDir, filename)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing file %s: %w", filename, err)
		}

		if err := e.writeFile(path, group); err != nil {
			return fmt.Errorf("failed to export %s group: %w", group.Kind, err)
		}
	}

	return nil
}

// writeFile writes a group to a csv file.
func (e *Exporter) writeFile(path string, group *types.Group) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	// Create CSV writer
	writer := csv.NewWriter(file)

	// Write header
	if err := writer.Write(group.Kind.Schema()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write each record
	for _, record := range group.Records {
		if err := writer.Write(record.Values()); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv file: %w", err)
	}

	return nil
}
