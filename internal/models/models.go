package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

type FileVersion struct {
	ID       int    `json:"id"`
	Version  string `json:"version"`
	FileName string `json:"file_name"`
}

type Project struct {
	ID   int    `json:"id"`
	Code int64  `json:"code"`
	Name string `json:"name"`
}

type Value struct {
	ID            int       `json:"id,omitempty"`
	ProjectID     int       `json:"project_id"`
	FileVersionID int       `json:"file_version_id"`
	Date          time.Time `json:"date"`
	Plan          int64     `json:"plan"`
	Fact          int64     `json:"fact"`
}

// ValueType selects which measure of a Value the chart sums.
type ValueType string

const (
	ValueTypePlan ValueType = "plan"
	ValueTypeFact ValueType = "fact"
)

func ParseValueType(s string) (ValueType, error) {
	switch ValueType(s) {
	case ValueTypePlan, ValueTypeFact:
		return ValueType(s), nil
	}
	return "", fmt.Errorf("invalid value_type %q: must be %q or %q", s, ValueTypePlan, ValueTypeFact)
}

// Pick returns the measure of v selected by t.
func (t ValueType) Pick(v Value) int64 {
	if t == ValueTypeFact {
		return v.Fact
	}
	return v.Plan
}

// ChartData maps a YYYY-MM-DD date to the summed measure for that date.
type ChartData map[string]int64

// ImportRow is one positional spreadsheet row before its identifiers are resolved.
type ImportRow struct {
	Row         int
	ProjectCode int64
	Version     string
	Date        time.Time
	Plan        int64
	Fact        int64
}

type ImportRecord struct {
	ID          int
	FileName    string
	Checksum    string
	RowCount    int
	ProcessedAt time.Time
}

// RowError describes why a spreadsheet row could not be imported. Row is the
// 1-based sheet row number, or -1 when the error is not tied to a row.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *RowError) Error() string {
	if e.Row == -1 {
		if e.Err != nil {
			return fmt.Sprintf("%s - %v", e.Message, e.Err)
		}
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("row %d: %s - %v", e.Row, e.Message, e.Err)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// MarshalJSON keeps the wrapped error text, which is dropped by the struct tags.
func (e RowError) MarshalJSON() ([]byte, error) {
	out := struct {
		Row     int    `json:"row"`
		Message string `json:"message"`
		Error   string `json:"error,omitempty"`
	}{Row: e.Row, Message: e.Message}
	if e.Err != nil {
		out.Error = e.Err.Error()
	}
	return json.Marshal(out)
}
