package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Kruglikle/Free-room-MIET/pkg/upstream"
)

// Weekdays are the upstream's Russian day names, Monday-indexed.
var Weekdays = []string{
	"Понедельник",
	"Вторник",
	"Среда",
	"Четверг",
	"Пятница",
	"Суббота",
	"Воскресенье",
}

var (
	clockRe      = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	clockRangeRe = regexp.MustCompile(`(\d{1,2}:\d{2})\s*[-–]\s*(\d{1,2}:\d{2})`)

	titleCaser = cases.Title(language.Russian)
)

// Clock is a wall-clock time without a date.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight, for ordering.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// ParseClock parses "H:MM" or "HH:MM".
func ParseClock(value string) (Clock, bool) {
	match := clockRe.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return Clock{}, false
	}
	var c Clock
	fmt.Sscanf(match[1], "%d", &c.Hour)
	fmt.Sscanf(match[2], "%d", &c.Minute)
	if c.Hour > 23 || c.Minute > 59 {
		return Clock{}, false
	}
	return c, true
}

// parseClockRange finds an "HH:MM - HH:MM" range anywhere in value, e.g. in
// a slot label like "1 пара 9:00-10:20".
func parseClockRange(value string) (Clock, Clock, bool) {
	match := clockRangeRe.FindStringSubmatch(value)
	if match == nil {
		return Clock{}, Clock{}, false
	}
	start, okStart := ParseClock(match[1])
	end, okEnd := ParseClock(match[2])
	if !okStart || !okEnd {
		return Clock{}, Clock{}, false
	}
	return start, end, true
}

// Slot is a normalized pair-catalog entry. Start and End are nil when the
// upstream entry carried no parsable times; such slots are still selectable
// by code, just not resolvable from a wall-clock time.
type Slot struct {
	Code  string
	Label string
	Start *Clock
	End   *Clock
}

// NormalizeTimes turns the raw pair catalog into slots: explicit Begin/End
// fields win, a range inside the label is the fallback, and a missing label
// is synthesized from the parsed times.
func NormalizeTimes(raw []upstream.TimeSlot) []Slot {
	slots := make([]Slot, 0, len(raw))
	for _, entry := range raw {
		slot := Slot{Code: entry.Code, Label: strings.TrimSpace(entry.Label)}

		if start, ok := ParseClock(entry.Begin); ok {
			slot.Start = &start
		}
		if end, ok := ParseClock(entry.End); ok {
			slot.End = &end
		}

		if (slot.Start == nil || slot.End == nil) && slot.Label != "" {
			if start, end, ok := parseClockRange(slot.Label); ok {
				slot.Start = &start
				slot.End = &end
			}
		}

		if slot.Label == "" && slot.Start != nil && slot.End != nil {
			slot.Label = slot.Start.String() + "-" + slot.End.String()
		}

		slots = append(slots, slot)
	}
	return slots
}

// TimeToCode resolves a wall-clock time to the slot that contains it.
func TimeToCode(slots []Slot, target Clock) (string, bool) {
	for _, slot := range slots {
		if slot.Start == nil || slot.End == nil {
			continue
		}
		if slot.Start.Minutes() <= target.Minutes() && target.Minutes() <= slot.End.Minutes() {
			return slot.Code, true
		}
	}
	return "", false
}

// ParseDate accepts "2006-01-02", "02.01.2006" and day-first "02.01"
// (current year).
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"2006-01-02", "02.01.2006", "02.01"} {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if layout == "02.01" {
			now := time.Now()
			parsed = time.Date(now.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.Local)
		}
		return parsed, true
	}
	return time.Time{}, false
}

// WeekdayIndex returns the Monday-based weekday index of a date.
func WeekdayIndex(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// WeekdayName returns the Russian weekday name of a date.
func WeekdayName(date time.Time) string {
	return Weekdays[WeekdayIndex(date)]
}

// NormalizeWeekday matches free-form user input ("среда", "СРЕДА") against
// the canonical weekday names.
func NormalizeWeekday(input string) (string, bool) {
	normalized := titleCaser.String(strings.TrimSpace(input))
	for _, name := range Weekdays {
		if name == normalized {
			return name, true
		}
	}
	return "", false
}
