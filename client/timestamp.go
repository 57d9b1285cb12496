package client

import (
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	clockLayout    = "15:04"
	dateTimeLayout = dateLayout + " " + clockLayout
)

// joinDateTime takes the calendar day of date and the hour and minute of clock,
// both read in loc, and returns that instant in Unix milliseconds. A zero clock
// yields midnight.
func joinDateTime(date, clock time.Time, loc *time.Location) (int64, error) {
	clockStr := ""
	if !clock.IsZero() {
		clockStr = clock.In(loc).Format(clockLayout)
	}
	value := strings.TrimSpace(date.In(loc).Format(dateLayout) + " " + clockStr)

	layout := dateTimeLayout
	if clockStr == "" {
		layout = dateLayout
	}
	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
