package schedule

import (
	"sync"
	"time"

	"github.com/Kruglikle/Free-room-MIET/pkg/upstream"
)

// DayMapper learns the correspondence between weekday names and the
// upstream's internal day numbers, which are not guaranteed to match the ISO
// weekday index. Counts accumulate over the process lifetime; the mapping is
// only ever refined, never reset.
type DayMapper struct {
	mu     sync.Mutex
	counts map[string]map[int]int
	best   map[string]int
}

func NewDayMapper() *DayMapper {
	return &DayMapper{
		counts: make(map[string]map[int]int),
		best:   make(map[string]int),
	}
}

// UpdateFromItems tallies (day name, day number) co-occurrences. For each
// weekday the number with the highest cumulative count wins; on a tie the
// number that reached that count first is kept, so the outcome is
// deterministic for a fixed input order.
func (m *DayMapper) UpdateFromItems(items []upstream.ClassItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range items {
		if item.DayName == "" || item.DayNumber == nil {
			continue
		}
		name, number := item.DayName, *item.DayNumber

		if m.counts[name] == nil {
			m.counts[name] = make(map[int]int)
		}
		m.counts[name][number]++

		current, ok := m.best[name]
		if !ok || m.counts[name][number] > m.counts[name][current] {
			m.best[name] = number
		}
	}
}

// UpdateFromSchedules feeds every non-nil schedule's items into the mapper.
func (m *DayMapper) UpdateFromSchedules(schedules []*upstream.Schedule) {
	for _, schedule := range schedules {
		if schedule != nil {
			m.UpdateFromItems(schedule.Items)
		}
	}
}

// DateToAPIDay derives the weekday name of a date and the learned day
// number for it, falling back to weekday index + 1 (Monday = 1) when
// nothing has been observed for that weekday yet.
func (m *DayMapper) DateToAPIDay(date time.Time) (string, int) {
	name := WeekdayName(date)

	m.mu.Lock()
	defer m.mu.Unlock()

	if number, ok := m.best[name]; ok {
		return name, number
	}
	return name, WeekdayIndex(date) + 1
}
