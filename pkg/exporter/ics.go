package exporter

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/Kruglikle/Free-room-MIET/pkg/schedule"
	"github.com/Kruglikle/Free-room-MIET/pkg/upstream"
)

// WeekStart returns the Monday of the week containing t, at midnight in t's
// location.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -schedule.WeekdayIndex(day))
}

// GenerateICS writes one group's weekly timetable as an ICS calendar. The
// weekday-based class items are placed into the calendar week starting at
// weekStart (a Monday); items whose day or pair cannot be resolved are
// skipped.
func GenerateICS(group string, sched *upstream.Schedule, weekStart time.Time, w io.Writer) error {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		return fmt.Errorf("could not load timezone: %w", err)
	}

	slots := make(map[string]schedule.Slot)
	for _, slot := range schedule.NormalizeTimes(sched.Times) {
		slots[slot.Code] = slot
	}

	dayIndex := make(map[string]int)
	for i, name := range schedule.Weekdays {
		dayIndex[name] = i
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	for i, item := range sched.Items {
		day, ok := dayIndex[item.DayName]
		if !ok {
			continue
		}
		slot, ok := slots[item.TimeCode]
		if !ok || slot.Start == nil || slot.End == nil {
			continue
		}

		date := weekStart.AddDate(0, 0, day)
		startTime := time.Date(date.Year(), date.Month(), date.Day(),
			slot.Start.Hour, slot.Start.Minute, 0, 0, loc)
		endTime := time.Date(date.Year(), date.Month(), date.Day(),
			slot.End.Hour, slot.End.Minute, 0, 0, loc)

		summary := item.Subject
		if summary == "" {
			summary = fmt.Sprintf("Занятие (%s)", group)
		}

		event := cal.AddEvent(fmt.Sprintf("%s-%d", startTime.Format("20060102T150405Z"), i))
		event.SetCreatedTime(time.Now())
		event.SetDtStampTime(time.Now())
		event.SetModifiedAt(time.Now())
		event.SetStartAt(startTime)
		event.SetEndAt(endTime)
		event.SetSummary(summary)
		if item.Room != "" {
			event.SetLocation(item.Room)
		}

		description := fmt.Sprintf("Группа: %s", group)
		if item.Teacher != "" {
			description += fmt.Sprintf("\nПреподаватель: %s", item.Teacher)
		}
		event.SetDescription(description)
	}

	return cal.SerializeTo(w)
}
