package ledger

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the canonical format used for index keys and output.
const DateFormat = "2006-01-02"

// JournalDateFormat is the format used by ledger files and `ledger xml`.
const JournalDateFormat = "2006/01/02"

var readDateFormats = []string{"2006-1-2", "2006/1/2", "2006.1.2"}

// ParseDate parses a day-granular date. It accepts 2024-01-02, 2024/1/2 and
// 2024.01.02 forms and returns midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range readDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err.Error())
	}
	return t
}

// Day truncates t to midnight UTC of the same calendar day.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats t for use as an index key.
func DateKey(t time.Time) string { return t.Format(DateFormat) }
