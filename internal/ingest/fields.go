package ingest

import (
	"strconv"
	"strings"
	"time"

	"daybill/internal/domain"
)

// Date-time layouts seen in HIS extracts, day first. The unpadded forms
// also accept zero-padded input, so "01/03/2024 09:00" and "1/3/2024 9:00"
// both resolve against the same entries.
var dateTimeLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2/1/2006 15.04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2006-01-02",
}

// parseDayFirst parses a date text plus a time text into a calendar date
// and a time of day. The date alone is enough to accept the row: a time
// that fails to parse comes back as nil while the date stands.
func parseDayFirst(dateText, timeText string) (time.Time, *domain.ClockTime, bool) {
	dateText = strings.TrimSpace(dateText)
	timeText = strings.TrimSpace(timeText)
	if dateText == "" {
		return time.Time{}, nil, false
	}

	if timeText != "" {
		combined := dateText + " " + timeText
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, combined); err == nil {
				clock := domain.ClockTimeOf(t)
				return midnight(t), &clock, true
			}
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateText); err == nil {
			return midnight(t), nil, true
		}
	}
	return time.Time{}, nil, false
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseAmount cleans free-text money (thousands separators, stray spaces)
// and parses it as a float. Anything unparseable is zero: amounts feed
// sums downstream and must never be null.
func parseAmount(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
