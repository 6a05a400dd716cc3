package audit

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// ExportFilters narrows a CSV export. Zero values leave the dimension open.
type ExportFilters struct {
	From   time.Time
	To     time.Time
	Action shared.Action
}

func (f ExportFilters) matches(entry Entry) bool {
	if !f.From.IsZero() && entry.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && entry.Timestamp.After(f.To) {
		return false
	}
	if f.Action != "" && entry.Action != f.Action {
		return false
	}
	return true
}

var exportHeader = []string{"id", "timestamp", "user_id", "user_email", "user_role", "action", "resource_id", "detail"}

// WriteCSV streams the entries matching the filters as CSV, preserving the
// newest-first order they arrive in.
func WriteCSV(w io.Writer, entries []Entry, filters ExportFilters) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, entry := range entries {
		if !filters.matches(entry) {
			continue
		}
		resource := ""
		if entry.ResourceID != nil {
			resource = strconv.FormatInt(*entry.ResourceID, 10)
		}
		record := []string{
			strconv.FormatInt(entry.ID, 10),
			entry.Timestamp.Format(time.RFC3339),
			strconv.FormatInt(entry.UserID, 10),
			entry.UserEmail,
			string(entry.UserRole),
			string(entry.Action),
			resource,
			entry.Detail,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
