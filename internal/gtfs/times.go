package gtfs

import (
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// ParseScheduleTime parses a GTFS HH:MM:SS clock string into minutes since
// midnight. Hour values of 24 and above are accepted; they encode next-day
// service (25:10:00 is 01:10 the following morning). Seconds are truncated.
func ParseScheduleTime(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil || sec < 0 || sec > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// TripDuration returns the elapsed minutes between a departure and a later
// arrival given as schedule strings. An arrival numerically earlier than the
// departure is taken as an overnight wrap and shifted by one day. Returns
// false when either value is unparsable or the result is negative.
func TripDuration(departure, arrival string) (int, bool) {
	dep, ok := ParseScheduleTime(departure)
	if !ok {
		return 0, false
	}
	arr, ok := ParseScheduleTime(arrival)
	if !ok {
		return 0, false
	}
	if arr < dep {
		arr += minutesPerDay
	}
	d := arr - dep
	if d < 0 {
		return 0, false
	}
	return d, true
}
