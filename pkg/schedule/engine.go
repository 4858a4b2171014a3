package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/Kruglikle/Free-room-MIET/pkg/directory"
	"github.com/Kruglikle/Free-room-MIET/pkg/upstream"
)

// Scheduler is the aggregation engine: it fans schedule fetches out across
// every known group, keeps the day mapper refined with everything it sees,
// and computes room occupancy for a (day, slot) query.
type Scheduler struct {
	client *upstream.Client
	dir    *directory.Directory
	days   *DayMapper
}

func NewScheduler(client *upstream.Client, dir *directory.Directory) *Scheduler {
	return &Scheduler{
		client: client,
		dir:    dir,
		days:   NewDayMapper(),
	}
}

// Directory exposes the group/room directory the engine aggregates over.
func (s *Scheduler) Directory() *directory.Directory {
	return s.dir
}

// Client exposes the upstream client for single-group fetches.
func (s *Scheduler) Client() *upstream.Client {
	return s.client
}

// referenceSchedule fetches the first known group's schedule, which is
// enough to read the shared pair catalog.
func (s *Scheduler) referenceSchedule(ctx context.Context) *upstream.Schedule {
	groups := s.dir.Groups()
	if len(groups) == 0 {
		return nil
	}
	return s.client.FetchOne(ctx, groups[0])
}

// Times returns the normalized pair catalog, or nil when no group's
// schedule could be fetched.
func (s *Scheduler) Times(ctx context.Context) []Slot {
	schedule := s.referenceSchedule(ctx)
	if schedule == nil {
		return nil
	}
	return NormalizeTimes(schedule.Times)
}

// MapDate resolves a calendar date to the upstream's (day name, day number)
// pair, refining the mapper from a reference schedule on the way.
func (s *Scheduler) MapDate(ctx context.Context, date time.Time) (string, int) {
	if schedule := s.referenceSchedule(ctx); schedule != nil {
		s.days.UpdateFromItems(schedule.Items)
	}
	return s.days.DateToAPIDay(date)
}

// AggregateOccupied computes the set of rooms occupied on (dayName,
// dayNumber, timeCode) across all groups, plus the number of groups whose
// schedule was actually fetched. A zero success count means the upstream is
// down, which callers must report differently from "every room is free".
//
// Matching is deliberately permissive about absent fields: an item with no
// day name matches any day, a day-number check only applies when both sides
// have one, and only the slot code must match exactly (as a string).
func (s *Scheduler) AggregateOccupied(ctx context.Context, dayName string, dayNumber *int, timeCode string) (map[string]struct{}, int) {
	schedules := s.client.FetchAll(ctx, s.dir.Groups())
	s.days.UpdateFromSchedules(schedules)

	occupied := make(map[string]struct{})
	success := 0

	for _, schedule := range schedules {
		if schedule == nil {
			continue
		}
		success++
		for _, item := range schedule.Items {
			if item.DayName != "" && item.DayName != dayName {
				continue
			}
			if dayNumber != nil && item.DayNumber != nil && *item.DayNumber != *dayNumber {
				continue
			}
			if item.TimeCode != timeCode {
				continue
			}
			if item.Room == "" {
				continue
			}
			occupied[item.Room] = struct{}{}
		}
	}

	return occupied, success
}

// FreeRooms subtracts the occupied set from the directory's room list.
func (s *Scheduler) FreeRooms(occupied map[string]struct{}) []string {
	var free []string
	for _, room := range s.dir.Rooms() {
		if _, ok := occupied[room]; !ok {
			free = append(free, room)
		}
	}
	sort.Strings(free)
	return free
}
