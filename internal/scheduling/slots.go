// Package scheduling generates the advisory-meeting slot calendar.
package scheduling

import (
	"fmt"
	"time"
)

// Business hours offered for meetings, inclusive.
const (
	firstHour = 9
	lastHour  = 17
)

// Slot is one offered meeting time.
type Slot struct {
	Date      string `json:"date"`
	Weekday   string `json:"weekday"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
}

// AvailableSlots returns hourly weekday slots for the 7 calendar days after
// the reference date. Occupancy follows a fixed pattern so the calendar is a
// pure function of the reference date: a slot is taken when
// (day_of_month + hour) mod 3 == 0.
func AvailableSlots(ref time.Time) []Slot {
	slots := make([]Slot, 0)
	for offset := 1; offset <= 7; offset++ {
		day := ref.AddDate(0, 0, offset)
		name, ok := weekdayNames[day.Weekday()]
		if !ok {
			continue
		}
		for hour := firstHour; hour <= lastHour; hour++ {
			slots = append(slots, Slot{
				Date:      day.Format("2006-01-02"),
				Weekday:   name,
				Time:      fmt.Sprintf("%02d:00", hour),
				Available: (day.Day()+hour)%3 != 0,
			})
		}
	}
	return slots
}
