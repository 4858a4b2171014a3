package schedule

import (
	"testing"
	"time"

	"github.com/Kruglikle/Free-room-MIET/pkg/upstream"
)

func day(name string, number int) upstream.ClassItem {
	n := number
	return upstream.ClassItem{DayName: name, DayNumber: &n}
}

func TestDayMapperMajorityVote(t *testing.T) {
	m := NewDayMapper()
	m.UpdateFromItems([]upstream.ClassItem{
		day("Понедельник", 1),
		day("Понедельник", 1),
		day("Понедельник", 2),
	})

	// 2026-03-02 is a Monday
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	name, number := m.DateToAPIDay(monday)
	if name != "Понедельник" || number != 1 {
		t.Errorf("expected majority mapping (Понедельник, 1), got (%s, %d)", name, number)
	}
}

func TestDayMapperAccumulatesAcrossCalls(t *testing.T) {
	m := NewDayMapper()
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	m.UpdateFromItems([]upstream.ClassItem{day("Понедельник", 2)})
	if _, number := m.DateToAPIDay(monday); number != 2 {
		t.Fatalf("expected initial observation to map to 2, got %d", number)
	}

	// Two later observations of 1 must overtake the single 2
	m.UpdateFromItems([]upstream.ClassItem{day("Понедельник", 1)})
	m.UpdateFromItems([]upstream.ClassItem{day("Понедельник", 1)})
	if _, number := m.DateToAPIDay(monday); number != 1 {
		t.Errorf("expected cumulative majority to map to 1, got %d", number)
	}
}

func TestDayMapperTieKeepsFirstSeen(t *testing.T) {
	m := NewDayMapper()
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	m.UpdateFromItems([]upstream.ClassItem{
		day("Понедельник", 3),
		day("Понедельник", 1),
	})

	// Both numbers have one observation; the first to reach that count wins
	if _, number := m.DateToAPIDay(monday); number != 3 {
		t.Errorf("expected the first-seen number to win the tie, got %d", number)
	}
}

func TestDayMapperFallback(t *testing.T) {
	m := NewDayMapper()

	// 2026-03-05 is a Thursday: unmapped days fall back to weekday index + 1
	thursday := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	name, number := m.DateToAPIDay(thursday)
	if name != "Четверг" || number != 4 {
		t.Errorf("expected fallback (Четверг, 4), got (%s, %d)", name, number)
	}
}

func TestDayMapperSkipsIncompleteItems(t *testing.T) {
	m := NewDayMapper()
	two := 2
	m.UpdateFromItems([]upstream.ClassItem{
		{DayName: "Понедельник"}, // no number
		{DayNumber: &two},        // no name
		{},                       // nothing
	})

	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if _, number := m.DateToAPIDay(monday); number != 1 {
		t.Errorf("expected incomplete items to be ignored (fallback 1), got %d", number)
	}
}
