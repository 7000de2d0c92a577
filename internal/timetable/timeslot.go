// Package timetable recommends conflict-free weekly course schedules from a
// catalog of offerings. Everything in it is pure and request scoped.
package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

// Weekday identifies a teaching day. Only Monday through Friday are valid.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

var weekdayNames = map[Weekday]string{
	Monday:    "MONDAY",
	Tuesday:   "TUESDAY",
	Wednesday: "WEDNESDAY",
	Thursday:  "THURSDAY",
	Friday:    "FRIDAY",
}

var weekdayAliases = map[string]Weekday{
	"MONDAY":    Monday,
	"MON":       Monday,
	"월":         Monday,
	"TUESDAY":   Tuesday,
	"TUE":       Tuesday,
	"화":         Tuesday,
	"WEDNESDAY": Wednesday,
	"WED":       Wednesday,
	"수":         Wednesday,
	"THURSDAY":  Thursday,
	"THU":       Thursday,
	"목":         Thursday,
	"FRIDAY":    Friday,
	"FRI":       Friday,
	"금":         Friday,
}

// ParseWeekday accepts English names, three letter abbreviations and the
// Korean day syllables used by the catalog.
func ParseWeekday(raw string) (Weekday, error) {
	day, ok := weekdayAliases[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", raw)
	}
	return day, nil
}

// Valid reports whether d is Monday..Friday.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Friday
}

func (d Weekday) String() string {
	if name, ok := weekdayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Weekday(%d)", int(d))
}

// ClockTime is a wall-clock time expressed in minutes since midnight.
type ClockTime int

// ParseClock parses "HH:MM" (a single digit hour is accepted).
func ParseClock(raw string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid clock hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock minute in %q", raw)
	}
	return ClockTime(hour*60 + minute), nil
}

// MustClock is ParseClock for literals; it panics on malformed input.
func MustClock(raw string) ClockTime {
	c, err := ParseClock(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// Hour returns the clock hour (0-23).
func (c ClockTime) Hour() int {
	return int(c) / 60
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// TimeSlot is one weekly meeting block of an offering.
type TimeSlot struct {
	Day   Weekday
	Start ClockTime
	End   ClockTime
}

// NewTimeSlot parses and validates a slot.
func NewTimeSlot(day Weekday, start, end string) (TimeSlot, error) {
	s, err := ParseClock(start)
	if err != nil {
		return TimeSlot{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeSlot{}, err
	}
	slot := TimeSlot{Day: day, Start: s, End: e}
	if err := slot.Validate(); err != nil {
		return TimeSlot{}, err
	}
	return slot, nil
}

// Validate checks the weekday and that start < end.
func (s TimeSlot) Validate() error {
	if !s.Day.Valid() {
		return fmt.Errorf("time slot has invalid weekday %d", int(s.Day))
	}
	if s.Start < 0 || s.End > 24*60 {
		return fmt.Errorf("time slot %s is outside the day", s)
	}
	if s.Start >= s.End {
		return fmt.Errorf("time slot %s must start before it ends", s)
	}
	return nil
}

// Overlaps reports whether both slots share a day and their [start,end)
// intervals intersect.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.Day == o.Day && s.Start < o.End && o.Start < s.End
}

// Key returns the (day, start) conflict key.
func (s TimeSlot) Key() SlotKey {
	return SlotKey{Day: s.Day, Start: s.Start}
}

func (s TimeSlot) String() string {
	return fmt.Sprintf("%s %s-%s", s.Day, s.Start, s.End)
}

// SlotKey identifies a slot by day and start time. Two slots with equal keys
// are considered conflicting under the start-key policy.
type SlotKey struct {
	Day   Weekday
	Start ClockTime
}

// HourBlock is an excluded (day, clock hour) bucket.
type HourBlock struct {
	Day  Weekday
	Hour int
}

// Contains reports whether the slot starts inside the block's clock hour.
func (b HourBlock) Contains(s TimeSlot) bool {
	return b.Day == s.Day && b.Hour == s.Start.Hour()
}

// Intersects reports whether any part of the slot falls inside the block.
func (b HourBlock) Intersects(s TimeSlot) bool {
	return s.Overlaps(TimeSlot{Day: b.Day, Start: ClockTime(b.Hour * 60), End: ClockTime((b.Hour + 1) * 60)})
}
