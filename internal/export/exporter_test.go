package export_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/robalyx/igsheet/internal/export"
	"github.com/robalyx/igsheet/internal/export/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		now    time.Time
		offset time.Duration
		want   string
	}{
		{
			name:   "morning shifted to afternoon",
			now:    time.Date(2026, 10, 14, 9, 5, 7, 0, time.UTC),
			offset: 6 * time.Hour,
			want:   "14_10_2026_03_05_07_PM",
		},
		{
			name:   "shift crosses midnight",
			now:    time.Date(2026, 12, 31, 20, 0, 0, 0, time.UTC),
			offset: 6 * time.Hour,
			want:   "01_01_2027_02_00_00_AM",
		},
		{
			name:   "noon",
			now:    time.Date(2026, 1, 2, 6, 0, 0, 0, time.UTC),
			offset: 6 * time.Hour,
			want:   "02_01_2026_12_00_00_PM",
		},
		{
			name:   "no offset",
			now:    time.Date(2026, 1, 2, 0, 30, 0, 0, time.UTC),
			offset: 0,
			want:   "02_01_2026_12_30_00_AM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, export.Timestamp(tt.now, tt.offset))
		})
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	ts := "14_10_2026_03_05_07_PM"
	assert.Equal(t, "number_instagram_14_10_2026_03_05_07_PM.xlsx", export.FileName(types.KindPhone, ts))
	assert.Equal(t, "mail_instagram_14_10_2026_03_05_07_PM.xlsx", export.FileName(types.KindEmail, ts))
}

func TestParseFormats(t *testing.T) {
	t.Parallel()

	formats, err := export.ParseFormats(nil)
	require.NoError(t, err)
	assert.Equal(t, []export.Format{export.FormatXLSX}, formats)

	formats, err = export.ParseFormats([]string{"XLSX", " csv ", "sqlite", "csv"})
	require.NoError(t, err)
	assert.Equal(t, []export.Format{export.FormatXLSX, export.FormatCSV, export.FormatSQLite}, formats)

	_, err = export.ParseFormats([]string{"binary"})
	require.ErrorIs(t, err, export.ErrUnsupportedFormat)
}

func TestExporter_ExportAll(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	groups := []*types.Group{
		{Kind: types.KindPhone, Records: []*types.Record{{Username: "a", Identity: "1"}}},
		{Kind: types.KindEmail, Records: []*types.Record{{Username: "b", Identity: "b@x"}}},
	}

	formats := []export.Format{export.FormatXLSX, export.FormatCSV, export.FormatSQLite}
	e := export.New(tempDir, "ts", formats, zap.NewNop())
	require.NoError(t, e.ExportAll(groups))

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	assert.Equal(t, []string{
		"mail_instagram_ts.csv",
		"mail_instagram_ts.db",
		"mail_instagram_ts.xlsx",
		"number_instagram_ts.csv",
		"number_instagram_ts.db",
		"number_instagram_ts.xlsx",
	}, names)

	info, err := os.Stat(filepath.Join(tempDir, "number_instagram_ts.xlsx"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestExporter_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	e := export.New(t.TempDir(), "ts", []export.Format{"binary"}, zap.NewNop())
	err := e.ExportAll([]*types.Group{{Kind: types.KindEmail}})
	require.ErrorIs(t, err, export.ErrUnsupportedFormat)
}
