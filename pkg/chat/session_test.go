package chat

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Kruglikle/Free-room-MIET/pkg/config"
	"github.com/Kruglikle/Free-room-MIET/pkg/directory"
	"github.com/Kruglikle/Free-room-MIET/pkg/schedule"
	"github.com/Kruglikle/Free-room-MIET/pkg/upstream"
)

const mondaySchedule = `{
	"Times": [
		{"Code": "1", "Time": "1 пара", "Begin": "9:00", "End": "10:20"},
		{"Code": "2", "Time": "2 пара", "Begin": "10:30", "End": "11:50"}
	],
	"Data": [
		{"Day": "Понедельник", "DayNumber": 1, "Time": {"Code": "1"}, "Room": "3101"},
		{"Day": "Понедельник", "DayNumber": 1, "Time": {"Code": "2"}, "Room": "3102"}
	]
}`

func newTestChat(t *testing.T, handler http.HandlerFunc, groups, rooms []string) (*Session, *[]string) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	cfg := &config.Config{
		ScheduleURL:    server.URL + "/schedule/data",
		GroupsURL:      server.URL + "/schedule/groups",
		PageURL:        server.URL + "/schedule",
		MaxConcurrency: 4,
		Timeout:        5 * time.Second,
		UserAgent:      "free-room-test",
		GroupsFile:     filepath.Join(dir, "groups.json"),
		RoomsFile:      filepath.Join(dir, "rooms.json"),
		PageSize:       40,
	}
	if err := directory.SaveList(cfg.GroupsFile, groups); err != nil {
		t.Fatalf("failed to seed groups: %v", err)
	}
	if err := directory.SaveList(cfg.RoomsFile, rooms); err != nil {
		t.Fatalf("failed to seed rooms: %v", err)
	}

	client := upstream.NewClient(cfg, nil)
	d := directory.New(cfg, client)
	d.LoadFromDisk()
	eng := schedule.NewScheduler(client, d)

	var sent []string
	session := NewSession(cfg, eng, func(text string) {
		sent = append(sent, text)
	})
	return session, &sent
}

func lastMessage(sent *[]string) string {
	if len(*sent) == 0 {
		return ""
	}
	return (*sent)[len(*sent)-1]
}

func TestSessionFullFlow(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mondaySchedule))
	}
	session, sent := newTestChat(t, handler, []string{"ПМ-21"}, []string{"1209", "3101", "3102"})

	ctx := context.Background()
	session.Start(ctx)
	if session.State() != "choosing_day" {
		t.Fatalf("expected choosing_day after start, got %s", session.State())
	}

	session.ProcessMessage(ctx, "дата")
	if session.State() != "choosing_date" {
		t.Fatalf("expected choosing_date, got %s", session.State())
	}

	// 2026-03-02 is a Monday
	session.ProcessMessage(ctx, "2026-03-02")
	if session.State() != "choosing_pair" {
		t.Fatalf("expected choosing_pair after a valid date, got %s", session.State())
	}
	if !strings.Contains(lastMessage(sent), "1 пара") {
		t.Errorf("expected the pair prompt to list slots, got %q", lastMessage(sent))
	}

	session.ProcessMessage(ctx, "1")
	if session.State() != "choosing_corpus" {
		t.Fatalf("expected choosing_corpus after picking a pair, got %s", session.State())
	}
	if !strings.Contains(lastMessage(sent), "31xx") {
		t.Errorf("expected the corpus prompt to list prefixes, got %q", lastMessage(sent))
	}

	session.ProcessMessage(ctx, "все")
	if session.State() != "showing_results" {
		t.Fatalf("expected showing_results, got %s", session.State())
	}

	results := lastMessage(sent)
	// Slot 1 on Monday occupies 3101; 1209 and 3102 stay free
	if !strings.Contains(results, "1209") || !strings.Contains(results, "3102") {
		t.Errorf("expected free rooms 1209 and 3102 in %q", results)
	}
	if strings.Contains(results, "3101") {
		t.Errorf("expected occupied room 3101 to be absent from %q", results)
	}
	if !strings.Contains(results, "Всего: 2") {
		t.Errorf("expected a total of 2 free rooms in %q", results)
	}
}

func TestSessionRejectsBadDate(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mondaySchedule))
	}
	session, sent := newTestChat(t, handler, []string{"ПМ-21"}, []string{"3101"})

	ctx := context.Background()
	session.Start(ctx)
	session.ProcessMessage(ctx, "дата")
	session.ProcessMessage(ctx, "позавчера")

	if session.State() != "choosing_date" {
		t.Errorf("expected an unparsable date to keep the state, got %s", session.State())
	}
	if !strings.Contains(lastMessage(sent), "Не распознал дату") {
		t.Errorf("expected a date re-prompt, got %q", lastMessage(sent))
	}
}

func TestSessionWallClockPath(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mondaySchedule))
	}
	session, _ := newTestChat(t, handler, []string{"ПМ-21"}, []string{"1209", "3102"})

	ctx := context.Background()
	session.Start(ctx)
	session.ProcessMessage(ctx, "02.03.2026")
	session.ProcessMessage(ctx, "время")
	if session.State() != "choosing_time" {
		t.Fatalf("expected choosing_time, got %s", session.State())
	}

	// 10:45 falls inside pair 2
	session.ProcessMessage(ctx, "10:45")
	if session.State() != "choosing_corpus" {
		t.Errorf("expected a resolvable time to advance, got %s", session.State())
	}

	session.ProcessMessage(ctx, "меню")
	if session.State() != "choosing_day" {
		t.Errorf("expected меню to reset to choosing_day, got %s", session.State())
	}
}

func TestSessionReportsOutage(t *testing.T) {
	healthy := true
	handler := func(w http.ResponseWriter, r *http.Request) {
		if healthy {
			w.Write([]byte(mondaySchedule))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	session, sent := newTestChat(t, handler, []string{"ПМ-21"}, []string{"3101"})

	ctx := context.Background()
	session.Start(ctx)
	session.ProcessMessage(ctx, "02.03.2026")
	session.ProcessMessage(ctx, "1")

	// The upstream dies right before aggregation
	healthy = false
	session.ProcessMessage(ctx, "все")

	if !strings.Contains(lastMessage(sent), "недоступно") {
		t.Errorf("expected an outage message, got %q", lastMessage(sent))
	}
}

func TestSessionPagination(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mondaySchedule))
	}

	var rooms []string
	for i := 0; i < 45; i++ {
		rooms = append(rooms, fmt.Sprintf("4%03d", i))
	}
	session, sent := newTestChat(t, handler, []string{"ПМ-21"}, rooms)

	ctx := context.Background()
	session.Start(ctx)
	session.ProcessMessage(ctx, "02.03.2026")
	session.ProcessMessage(ctx, "1")
	session.ProcessMessage(ctx, "все")

	first := lastMessage(sent)
	if !strings.Contains(first, "Страница 1/2") {
		t.Fatalf("expected two pages, got %q", first)
	}

	session.ProcessMessage(ctx, "далее")
	second := lastMessage(sent)
	if !strings.Contains(second, "Страница 2/2") {
		t.Errorf("expected the second page, got %q", second)
	}

	// Paging past the end stays on the last page
	session.ProcessMessage(ctx, "далее")
	if !strings.Contains(lastMessage(sent), "Страница 2/2") {
		t.Errorf("expected to stay on the last page, got %q", lastMessage(sent))
	}
}
