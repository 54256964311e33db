// Package activity builds hour-of-day and weekday histograms of message timestamps.
package activity

import (
	"time"

	"tgosint/backend/internal/archive"
)

// Weekdays lists weekday names in histogram order (Monday first)
var Weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Histogram counts dated messages per hour of day and per weekday
type Histogram struct {
	Total    int     `json:"total"`
	Hours    [24]int `json:"hours"`
	Weekdays [7]int  `json:"weekdays"` // Monday = 0
	Undated  int     `json:"undated"`
}

// Build tallies messages by the hour and weekday of their own timestamp offset
func Build(msgs []archive.Message) Histogram {
	var h Histogram
	for _, msg := range msgs {
		if msg.Date == nil {
			h.Undated++
			continue
		}
		h.Hours[msg.Date.Hour()]++
		h.Weekdays[mondayFirst(msg.Date.Weekday())]++
		h.Total++
	}
	return h
}

// PeakHour returns the busiest hour, the earliest one on ties. ok is false without data.
func (h Histogram) PeakHour() (hour int, ok bool) {
	best := -1
	for i, n := range h.Hours {
		if n > 0 && (best < 0 || n > h.Hours[best]) {
			best = i
		}
	}
	return best, best >= 0
}

// PeakWeekday returns the busiest weekday name, the earliest one on ties
func (h Histogram) PeakWeekday() (string, bool) {
	best := -1
	for i, n := range h.Weekdays {
		if n > 0 && (best < 0 || n > h.Weekdays[best]) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return Weekdays[best], true
}

func mondayFirst(d time.Weekday) int {
	return (int(d) + 6) % 7
}
