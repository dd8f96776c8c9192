package fetcher

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultTitle replaces missing or blank post titles
const DefaultTitle = "Announcement"

// maxDateMillis bounds numeric dates to the range a JavaScript Date accepts
const maxDateMillis = 8.64e15

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC1123Z,
	time.RFC1123,
}

// parseDate accepts the date formats WordPress and feeds emit.
// The zero time signals an unparseable value.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// unixMillis converts a numeric date, returning the zero time when out of range
func unixMillis(ms float64) time.Time {
	if math.IsNaN(ms) || math.Abs(ms) > maxDateMillis {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms))
}

// members calls fn with every value of a JSON object or array. Scalars have no members.
func members(r gjson.Result, fn func(v gjson.Result)) {
	if !r.IsObject() && !r.IsArray() {
		return
	}
	r.ForEach(func(_, v gjson.Result) bool {
		fn(v)
		return true
	})
}

// str returns r's value only when it is a JSON string
func str(r gjson.Result) (string, bool) {
	if r.Type != gjson.String {
		return "", false
	}
	return r.Str, true
}

// number reads a JSON number or a numeric string. NaN means "not a number".
func number(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Null:
		return 0
	case gjson.Number:
		return r.Num
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if s == "" {
			return 0
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return math.NaN()
}
