// utils/dates.go
package utils

import (
	"fmt"
	"regexp"
	"time"
)

const DateFormat = "2006-01-02"

var timeRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// ValidDate checks a YYYY-MM-DD date string
func ValidDate(date string) bool {
	_, err := time.Parse(DateFormat, date)
	return err == nil
}

// ValidTime checks a HH:MM time string
func ValidTime(t string) bool {
	return timeRegex.MatchString(t)
}

// AddMinutes adds minutes to a HH:MM time string, clamped to the same day
func AddMinutes(t string, minutes int) string {
	var hour, min int
	if _, err := fmt.Sscanf(t, "%d:%d", &hour, &min); err != nil {
		return t
	}
	total := hour*60 + min + minutes
	h := total / 60
	if h > 23 {
		h = 23
	}
	return fmt.Sprintf("%02d:%02d", h, total%60)
}

// AppointmentStart combines a date and start time into a local time.Time
func AppointmentStart(date, startTime string) (time.Time, error) {
	return time.ParseInLocation(DateFormat+" 15:04", date+" "+startTime, time.Local)
}

// Today returns the current date as YYYY-MM-DD
func Today() string {
	return time.Now().Format(DateFormat)
}
