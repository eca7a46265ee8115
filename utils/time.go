package utils

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ToLocal converts a stored UTC time to Chilean local time for display.
func ToLocal(t time.Time) time.Time {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		return t // Fallback to UTC if tzdata is not available
	}
	return t.In(loc)
}

// ParseTime accepts RFC3339 timestamps or plain YYYY-MM-DD dates. endOfDay
// moves a plain date to its last instant so it can close a range.
func ParseTime(value string, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t.UTC(), nil
}

// DateRange parses optional fechaInicio/fechaFin query values.
func DateRange(from, to string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if from != "" {
		t, err := ParseTime(from, false)
		if err != nil {
			return nil, nil, Validation("fechaInicio inválida")
		}
		start = &t
	}
	if to != "" {
		t, err := ParseTime(to, true)
		if err != nil {
			return nil, nil, Validation("fechaFin inválida")
		}
		end = &t
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, Validation("fechaFin no puede ser anterior a fechaInicio")
	}
	return start, end, nil
}
