package chsink

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Datetime shapes recognized during kind inference. Each regexp gates the
// time.Parse attempts for its formats so most values are rejected cheaply.
var datetimePatterns = []struct {
	pattern *regexp.Regexp
	formats []string
}{
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.000"},
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02 15:04:05", "2006-01-02 15:04:05.000"},
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		[]string{"2006-01-02"},
	},
}

// parseDatetime parses a string into a time.Time if it matches one of the
// recognized datetime shapes.
func parseDatetime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, dp := range datetimePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, format := range dp.formats {
			if t, err := time.Parse(format, value); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// inferKind infers a column's semantic kind from its string values.
// Blank values carry no type information and are skipped. A single value
// that is neither a datetime nor a number makes the whole column text.
// Priority: string > datetime > float > integer.
func inferKind(values []string) Kind {
	if len(values) == 0 {
		return KindString
	}

	hasDatetime := false
	hasFloat := false
	hasInteger := false

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := parseDatetime(value); ok {
			hasDatetime = true
			continue
		}
		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			hasInteger = true
			continue
		}
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			hasFloat = true
			continue
		}
		return KindString
	}

	switch {
	case hasDatetime && (hasFloat || hasInteger):
		// Mixed datetime and numeric values cannot share a column type.
		return KindString
	case hasDatetime:
		return KindDateTime
	case hasFloat:
		return KindFloat64
	case hasInteger:
		return KindInt64
	default:
		return KindString
	}
}

// convertColumn builds a typed Column from string cells according to the
// inferred kind. Blank or unparsable cells become the kind's zero value.
func convertColumn(name string, kind Kind, cells []string) Column {
	switch kind {
	case KindDateTime:
		values := make([]time.Time, len(cells))
		for i, cell := range cells {
			if t, ok := parseDatetime(cell); ok {
				values[i] = t
			}
		}
		return TimeColumn(name, values)
	case KindInt64:
		values := make([]int64, len(cells))
		for i, cell := range cells {
			if n, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64); err == nil {
				values[i] = n
			}
		}
		return Int64Column(name, values)
	case KindFloat64:
		values := make([]float64, len(cells))
		for i, cell := range cells {
			if f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
				values[i] = f
			}
		}
		return Float64Column(name, values)
	default:
		return StringColumn(name, append([]string(nil), cells...))
	}
}
