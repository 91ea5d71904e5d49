package parser

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ThiagoRGoveia/plan-fact/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeSheet saves rows to a new workbook, placing them from A1 on the default sheet.
func writeSheet(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	path := filepath.Join(t.TempDir(), "import.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var header = []any{"code", "version", "date", "plan", "fact"}

func TestParseXLSX(t *testing.T) {
	t.Run("should read positional rows and skip the header", func(t *testing.T) {
		path := writeSheet(t, [][]any{
			header,
			{1, "v1", "2024-03-01", 10, 8},
			{2, "v1.2", "2024-03-02 00:00:00", 5, 0},
		})

		rows, rowErrs, err := ParseXLSX(path, "")
		require.NoError(t, err)
		assert.Empty(t, rowErrs)
		require.Len(t, rows, 2)

		assert.Equal(t, models.ImportRow{
			Row:         2,
			ProjectCode: 1,
			Version:     "v1",
			Date:        time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			Plan:        10,
			Fact:        8,
		}, rows[0])
		assert.Equal(t, 3, rows[1].Row)
		assert.Equal(t, "v1.2", rows[1].Version)
		assert.Equal(t, "2024-03-02", rows[1].Date.Format(models.DateLayout))
	})

	t.Run("should read date cells and integral floats", func(t *testing.T) {
		path := writeSheet(t, [][]any{
			header,
			{7.0, "v1", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), 12.0, 3},
		})

		rows, rowErrs, err := ParseXLSX(path, "Sheet1")
		require.NoError(t, err)
		assert.Empty(t, rowErrs)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(7), rows[0].ProjectCode)
		assert.Equal(t, "2024-03-01", rows[0].Date.Format(models.DateLayout))
		assert.Equal(t, int64(12), rows[0].Plan)
	})

	t.Run("should skip blank rows and report bad ones with their row number", func(t *testing.T) {
		path := writeSheet(t, [][]any{
			header,
			{1, "v1", "2024-03-01", 10, 8},
			{},
			{"abc", "v1", "2024-03-01", 10, 8},
			{1, "v1", "yesterday", 10, 8},
			{1, "v1", "2024-03-01", 1.5, 8},
			{1, "", "2024-03-01", 1, 8},
			{1, "v1"},
		})

		rows, rowErrs, err := ParseXLSX(path, "")
		require.NoError(t, err)
		require.Len(t, rows, 1)

		got := make([]int, 0, len(rowErrs))
		for _, re := range rowErrs {
			got = append(got, re.Row)
		}
		assert.Equal(t, []int{4, 5, 6, 7, 8}, got)
		assert.ErrorContains(t, &rowErrs[0], "project code")
		assert.ErrorContains(t, &rowErrs[1], "date")
		assert.ErrorContains(t, &rowErrs[2], "plan")
		assert.ErrorContains(t, &rowErrs[3], "version")
		assert.ErrorContains(t, &rowErrs[4], "expected 5 columns")
	})

	t.Run("should fail on an unknown sheet", func(t *testing.T) {
		path := writeSheet(t, [][]any{header})

		_, _, err := ParseXLSX(path, "Missing")
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, _, err := ParseXLSX(filepath.Join(t.TempDir(), "missing.xlsx"), "")
		assert.Error(t, err)
	})
}

func TestParseXLSXIntegerRange(t *testing.T) {
	t.Run("should report values that do not fit an integer column on their row", func(t *testing.T) {
		path := writeSheet(t, [][]any{
			header,
			{1, "v1", "2024-03-01", 3000000000, 8},
			{1, "v1", "2024-03-01", 3000000000.0, 8},
			{1, "v1", "2024-03-01", 10, -3000000000},
			{1, "v1", "2024-03-01", 2147483647, -2147483648},
		})

		rows, rowErrs, err := ParseXLSX(path, "")
		require.NoError(t, err)

		require.Len(t, rows, 1)
		assert.Equal(t, 6, rows[0].Row)
		assert.Equal(t, int64(2147483647), rows[0].Plan)
		assert.Equal(t, int64(-2147483648), rows[0].Fact)

		require.Len(t, rowErrs, 3)
		assert.Equal(t, 2, rowErrs[0].Row)
		assert.ErrorContains(t, &rowErrs[0], "plan: 3000000000 is out of the integer range")
		assert.Equal(t, 3, rowErrs[1].Row)
		assert.ErrorContains(t, &rowErrs[1], "plan")
		assert.Equal(t, 4, rowErrs[2].Row)
		assert.ErrorContains(t, &rowErrs[2], "fact")
	})
}

func TestParseInteger(t *testing.T) {
	t.Run("should enforce the integer range on both text and float forms", func(t *testing.T) {
		for _, s := range []string{"2147483648", "-2147483649", "2147483648.0", "1e10"} {
			_, err := parseInteger(s)
			assert.ErrorContains(t, err, "out of the integer range", s)
		}

		n, err := parseInteger("12.0")
		require.NoError(t, err)
		assert.Equal(t, int64(12), n)
	})
}

func TestParseDate(t *testing.T) {
	t.Run("should convert excel serials", func(t *testing.T) {
		d, err := parseDate("45352")
		require.NoError(t, err)
		assert.Equal(t, "2024-03-01", d.Format(models.DateLayout))
	})

	t.Run("should reject non dates", func(t *testing.T) {
		for _, s := range []string{"", "abc", "-3", "2024-13-01"} {
			_, err := parseDate(s)
			assert.Error(t, err, s)
		}
	})
}
