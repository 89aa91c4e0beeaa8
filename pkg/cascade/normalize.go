package cascade

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matst80/slask-catalog/pkg/types"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// RowString returns the first non empty value among keys as a string.
func RowString(row types.Row, keys ...string) string {
	for _, key := range keys {
		if s := asString(row[key]); s != "" {
			return s
		}
	}
	return ""
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case [16]byte:
		return uuid.UUID(t).String()
	case uuid.UUID:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// RowStrings reads a multi valued column. Arrays are kept as is, text is split on
// semicolons the way legacy tables store lists.
func RowStrings(row types.Row, key string) []string {
	switch t := row[key].(type) {
	case nil:
		return nil
	case []string:
		return cleanStrings(t)
	case []any:
		ret := make([]string, 0, len(t))
		for _, v := range t {
			ret = append(ret, asString(v))
		}
		return cleanStrings(ret)
	case string:
		return cleanStrings(strings.Split(t, ";"))
	default:
		if s := asString(t); s != "" {
			return []string{s}
		}
	}
	return nil
}

func cleanStrings(values []string) []string {
	ret := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			ret = append(ret, v)
		}
	}
	return ret
}

func RowTime(row types.Row, keys ...string) (time.Time, bool) {
	for _, key := range keys {
		switch t := row[key].(type) {
		case time.Time:
			if !t.IsZero() {
				return t, true
			}
		case string:
			if ts, ok := ParseTime(t); ok {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

func ParseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CombineDateTime joins a date string and a clock string, a missing clock means midnight.
func CombineDateTime(date, clock string, loc *time.Location) (time.Time, bool) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if loc == nil {
		loc = time.UTC
	}
	if date == "" {
		return time.Time{}, false
	}
	if clock == "" {
		t, err := time.ParseInLocation(time.DateOnly, date, loc)
		return t, err == nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, date+" "+clock, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FieldMap describes where a source keeps the common projection.
type FieldMap struct {
	Id      string
	Title   []string
	Summary []string
	// Start and End are timestamp columns.
	Start []string
	End   []string
	// Date and Clock are used when a source stores date and time as separate strings.
	Date  string
	Clock string
	// Duration is assumed when the source has no end time.
	Duration   time.Duration
	Location   *time.Location
	Attributes map[string]string
	Constant   map[string]string
}

func (m FieldMap) Normalizer(ct types.ContentType) Normalizer {
	return func(row types.Row) (types.CatalogItem, bool) {
		id := RowString(row, m.Id)
		title := RowString(row, m.Title...)
		if id == "" || title == "" {
			return types.CatalogItem{}, false
		}
		item := types.CatalogItem{
			Id:         id,
			Type:       ct,
			Title:      title,
			Summary:    RowString(row, m.Summary...),
			Attributes: types.Attributes{},
		}

		var start time.Time
		var hasStart bool
		if len(m.Start) > 0 {
			start, hasStart = RowTime(row, m.Start...)
		} else if m.Date != "" {
			start, hasStart = CombineDateTime(RowString(row, m.Date), RowString(row, m.Clock), m.Location)
		}
		if hasStart {
			item.Timestamp = start
			if end, ok := RowTime(row, m.End...); ok && len(m.End) > 0 {
				item.EndTime = &end
			} else if m.Duration > 0 {
				end := start.Add(m.Duration)
				item.EndTime = &end
			}
		}

		for attr, col := range m.Attributes {
			item.Attributes.Add(attr, RowStrings(row, col)...)
		}
		for attr, value := range m.Constant {
			item.Attributes.Add(attr, value)
		}
		return item, true
	}
}
