package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robalyx/igsheet/internal/export/types"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Extension is the file extension for SQLite exports.
const Extension = "db"

// TableName is the table holding the records in every exported database.
const TableName = "accounts"

// Exporter handles exporting record groups to SQLite databases.
type Exporter struct {
	outDir string
}

// New creates a new SQLite exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export writes each group to its own SQLite database named by name.
func (e *Exporter) Export(groups []*types.Group, name func(types.Kind) string) error {
	for _, group := range groups {
		filename := name(group.Kind) + "." + Extension

		// Remove existing file if it exists
		path := filepath.Join(e.outDir, filename)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing file %s: %w", filename, err)
		}

		if err := e.createDB(path, group); err != nil {
			return fmt.Errorf("failed to export %s group: %w", group.Kind, err)
		}
	}

	return nil
}

// ColumnNames returns the table columns for a kind, in schema order.
func ColumnNames(kind types.Kind) []string {
	schema := kind.Schema()
	columns := make([]string, len(schema))

	for i, header := range schema {
		switch header {
		case "2FA":
			columns[i] = "auth_code"
		default:
			columns[i] = strings.ToLower(header)
		}
	}

	return columns
}

// createDB creates a SQLite database with a single table containing the group's records.
func (e *Exporter) createDB(path string, group *types.Group) error {
	// Open database
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate|sqlite.OpenReadWrite)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer conn.Close()

	columns := ColumnNames(group.Kind)

	// Create table; row order follows input order through the rowid
	err = sqlitex.Execute(conn, fmt.Sprintf(`
		CREATE TABLE %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL
		)
	`, TableName, columns[0], columns[1], columns[2], columns[3]), nil)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (?, ?, ?, ?)", TableName, strings.Join(columns, ", "),
	)

	// Insert records in batches
	const batchSize = 1000
	for i := 0; i < len(group.Records); i += batchSize {
		end := min(i+batchSize, len(group.Records))

		// Begin transaction
		err = sqlitex.Execute(conn, "BEGIN TRANSACTION", nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		// Insert batch
		for _, record := range group.Records[i:end] {
			err = sqlitex.Execute(conn, insert, &sqlitex.ExecOptions{
				Args: []any{record.Username, record.Password, record.AuthCode, record.Identity},
			})
			if err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}
		}

		// Commit transaction
		err = sqlitex.Execute(conn, "COMMIT", nil)
		if err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
	}

	return nil
}
