// Package dates converts date-like values into the RFC3339 timestamp strings
// the backend requires for date-typed properties.
package dates

import (
	"fmt"
	"time"
)

// Layouts accepted for date strings, tried in order.
var layouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToRFC3339 converts a string or time.Time into an RFC3339 timestamp string.
// Any other type, or a string matching none of the accepted layouts, is a
// format error.
func ToRFC3339(value any) (string, error) {
	switch v := value.(type) {
	case time.Time:
		return v.Format(time.RFC3339), nil
	case string:
		for _, layout := range layouts {
			t, err := time.Parse(layout, v)
			if err == nil {
				return t.Format(time.RFC3339), nil
			}
		}
		return "", fmt.Errorf("value %q is not a parseable date", v)
	default:
		return "", fmt.Errorf("value of type %T is not a date", value)
	}
}

// IsDate reports whether value converts cleanly to an RFC3339 timestamp.
func IsDate(value any) bool {
	_, err := ToRFC3339(value)
	return err == nil
}
