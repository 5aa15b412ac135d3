package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	customLayout1 = "2006-01-02 15:04:05"
	customLayout2 = "2006-01-02T15:04:05.000-0700"
	customLayout3 = "2006-01-02T15:04:05-07:00"
	customLayout4 = "Mon, 2 Jan 2006 15:04:05 -0700 (MST)"
	customLayout5 = "Mon, 2 Jan 2006 15:04:05 MST"
	customLayout6 = "Mon, 2 Jan 2006 15:04:05 -0700"
	customLayout7 = "Mon, 2 Jan 2006 15:04:05 +0000 (GMT)"
	customLayout9 = "2 Jan 2006 15:04:05 -0700"
)

func Now() time.Time {
	return time.Now().UTC()
}

func NowPtr() *time.Time {
	return TimePtr(time.Now().UTC())
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

// ParseOriginDate parses an RFC 2822 Date header (with the handful of
// layout variants mail clients actually emit). Callers fall back to "now"
// in UTC on failure, per spec §4.3 step 3.
func ParseOriginDate(input string) (time.Time, error) {
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date header")
	}

	t, err := time.Parse(time.RFC1123Z, input)
	if err == nil {
		return t.UTC(), nil
	}

	layouts := []string{customLayout1, customLayout2, customLayout4, customLayout5, customLayout6, customLayout7, customLayout9}
	for _, layout := range layouts {
		t, err = time.Parse(layout, input)
		if err == nil {
			return t.UTC(), nil
		}
	}

	inputForLayout3 := input
	if !strings.Contains(input, "[UTC]") {
		if idx := strings.Index(input, "["); idx != -1 {
			inputForLayout3 = input[:idx]
		}
	}
	t, err = time.Parse(customLayout3, inputForLayout3)
	if err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("cannot parse date header %q", input)
}

func IsInFuture(timestamp time.Time) bool {
	return timestamp.After(time.Now())
}
