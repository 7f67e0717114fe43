package dta

import (
	"strconv"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

var dateEpoch = time.Date(1960, time.January, 1, 0, 0, 0, 0, time.UTC)

// IsDateFormat reports whether a display format is one of the daily date
// formats (%d..., %td..., optionally left-justified with "-").
func IsDateFormat(format string) bool {
	f := strings.TrimSpace(format)
	if !strings.HasPrefix(f, "%") {
		return false
	}
	f = strings.TrimPrefix(f[1:], "-")
	return strings.HasPrefix(f, "d") || strings.HasPrefix(f, "td")
}

// DateFromDays converts a daily date value (days since 1 Jan 1960) to a time.
func DateFromDays(days int64) time.Time {
	return dateEpoch.AddDate(0, 0, int(days))
}

// DaysFromDate is the inverse of DateFromDays; the time of day is dropped.
func DaysFromDate(t time.Time) int64 {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return (day.Unix() - dateEpoch.Unix()) / secondsPerDay
}

func defaultFormat(t StorageType) string {
	switch t.Kind {
	case KindByte, KindInt:
		return "%8.0g"
	case KindLong:
		return "%12.0g"
	case KindFloat:
		return "%9.0g"
	case KindDouble:
		return "%10.0g"
	}
	return "%" + strconv.Itoa(max(t.Width, 1)) + "s"
}
