package ai

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ResolveDueDate turns a due-date phrase into an absolute YYYY-MM-DD date
// relative to now. Already-absolute dates pass through unchanged; phrases
// that cannot be resolved return "".
func ResolveDueDate(phrase string, now time.Time) string {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return ""
	}
	if t, err := time.Parse(dateLayout, p); err == nil {
		return t.Format(dateLayout)
	}

	switch p {
	case "today", "tonight":
		return now.Format(dateLayout)
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(dateLayout)
	case "next week":
		return now.AddDate(0, 0, 7).Format(dateLayout)
	case "next month":
		return now.AddDate(0, 1, 0).Format(dateLayout)
	}

	if wd, ok := weekdays[strings.TrimPrefix(p, "next ")]; ok {
		days := (int(wd) - int(now.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return now.AddDate(0, 0, days).Format(dateLayout)
	}
	return ""
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}
