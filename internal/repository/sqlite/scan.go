package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type scanner interface {
	Scan(dest ...any) error
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeTags(raw string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil
	}
	return tags
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// likePattern escapes LIKE wildcards so the query is matched as a literal substring.
func likePattern(query string) string {
	return "%" + escapeLike(query) + "%"
}

func escapeLike(s string) string {
	r := make([]rune, 0, len(s))
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			r = append(r, '\\')
		}
		r = append(r, c)
	}
	return string(r)
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
}

// timestamp scans DATETIME columns. Values read through RETURNING carry no declared
// column type, so the driver hands them back as text instead of time.Time.
type timestamp struct {
	dst *time.Time
}

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*ts.dst = v
		return nil
	case nil:
		*ts.dst = time.Time{}
		return nil
	case []byte:
		return ts.parse(string(v))
	case string:
		return ts.parse(v)
	}
	return fmt.Errorf("unsupported timestamp type %T", src)
}

func (ts timestamp) parse(raw string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			*ts.dst = t
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", raw)
}
