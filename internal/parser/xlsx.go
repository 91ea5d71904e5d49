package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ThiagoRGoveia/plan-fact/internal/models"
	"github.com/xuri/excelize/v2"
)

// Columns of the import sheet, in order.
const (
	colProjectCode = iota
	colVersion
	colDate
	colPlan
	colFact
	importColumns
)

var dateLayouts = []string{models.DateLayout, "2006-01-02 15:04:05", time.RFC3339}

// ParseXLSX reads the value rows of a spreadsheet. The first row is a header;
// blank rows are skipped. Rows that cannot be parsed are returned as row
// errors, a file that cannot be read at all is returned as err.
func ParseXLSX(filePath string, sheet string) ([]models.ImportRow, []models.RowError, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open spreadsheet %s: %w", filePath, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("spreadsheet %s has no sheets", filePath)
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, nil, fmt.Errorf("sheet %q not found in %s", sheet, filePath)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, filePath, err)
	}
	defer rows.Close()

	var (
		parsed  []models.ImportRow
		rowErrs []models.RowError
		rowNum  int
	)
	for rows.Next() {
		rowNum++
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row %d of %s: %w", rowNum, filePath, err)
		}

		// Skip header
		if rowNum == 1 || isBlank(cols) {
			continue
		}

		row, err := parseRow(cols)
		if err != nil {
			rowErrs = append(rowErrs, models.RowError{Row: rowNum, Message: "invalid row", Err: err})
			continue
		}
		row.Row = rowNum
		parsed = append(parsed, *row)
	}
	if err := rows.Error(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate rows of %s: %w", filePath, err)
	}

	return parsed, rowErrs, nil
}

func parseRow(cols []string) (*models.ImportRow, error) {
	if len(cols) < importColumns {
		return nil, fmt.Errorf("expected %d columns, got %d", importColumns, len(cols))
	}

	code, err := parseInteger(cols[colProjectCode])
	if err != nil {
		return nil, fmt.Errorf("project code: %w", err)
	}

	version := strings.TrimSpace(cols[colVersion])
	if version == "" {
		return nil, fmt.Errorf("version: empty value")
	}

	date, err := parseDate(cols[colDate])
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	plan, err := parseInteger(cols[colPlan])
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	fact, err := parseInteger(cols[colFact])
	if err != nil {
		return nil, fmt.Errorf("fact: %w", err)
	}

	return &models.ImportRow{
		ProjectCode: code,
		Version:     version,
		Date:        date,
		Plan:        plan,
		Fact:        fact,
	}, nil
}

// parseInteger accepts plain integers and integral floats such as "12.0",
// which is how spreadsheets often store whole numbers. Values must fit the
// INTEGER columns they are stored in.
func parseInteger(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return n, nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%s is out of the integer range", s)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("%s is out of the integer range", s)
	}
	return int64(f), nil
}

// parseDate accepts ISO dates and Excel date serials.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), nil
		}
	}

	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial <= 0 {
		return time.Time{}, fmt.Errorf("%q is not a date", s)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a date: %w", s, err)
	}
	return truncateDay(t), nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
