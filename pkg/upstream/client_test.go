package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Kruglikle/Free-room-MIET/pkg/cache"
	"github.com/Kruglikle/Free-room-MIET/pkg/config"
)

const mockSchedule = `{
	"Times": [{"Code": "1", "Time": "1 пара", "Begin": "9:00", "End": "10:20"}],
	"Data": [{"Day": "Понедельник", "DayNumber": 1, "Time": {"Code": "1"}, "Room": "3101"}]
}`

func testConfig(serverURL string) *config.Config {
	return &config.Config{
		ScheduleURL:    serverURL + "/schedule/data",
		GroupsURL:      serverURL + "/schedule/groups",
		PageURL:        serverURL + "/schedule",
		MaxConcurrency: 4,
		Timeout:        5 * time.Second,
		UserAgent:      "free-room-test",
	}
}

func TestFetchAllOrderAndFailureIsolation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		switch r.PostFormValue("group") {
		case "ПМ-21":
			w.Write([]byte(mockSchedule))
		case "ИВТ-33":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.Write([]byte(`{"Times": [], "Data": []}`))
		}
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)

	groups := []string{"ПМ-21", "ИВТ-33", "КТС-11"}
	schedules := client.FetchAll(context.Background(), groups)

	if len(schedules) != len(groups) {
		t.Fatalf("expected %d results, got %d", len(groups), len(schedules))
	}
	if schedules[0] == nil {
		t.Fatalf("expected ПМ-21 fetch to succeed")
	}
	if schedules[0].Items[0].Room != "3101" {
		t.Errorf("unexpected room in first schedule: %+v", schedules[0].Items[0])
	}
	if schedules[1] != nil {
		t.Errorf("expected ИВТ-33 failure to degrade to nil, got %+v", schedules[1])
	}
	if schedules[2] == nil {
		t.Errorf("expected КТС-11 fetch to succeed despite the sibling failure")
	}
}

func TestFetchOneUsesCache(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Write([]byte(mockSchedule))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), cache.New[*Schedule](time.Minute))

	first := client.FetchOne(context.Background(), "ПМ-21")
	second := client.FetchOne(context.Background(), "ПМ-21")

	if first == nil || second == nil {
		t.Fatalf("expected both fetches to succeed")
	}
	if n := atomic.LoadInt64(&hits); n != 1 {
		t.Errorf("expected one upstream request thanks to the cache, got %d", n)
	}
}

func TestFetchOneDoesNotCacheFailures(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), cache.New[*Schedule](time.Minute))

	if s := client.FetchOne(context.Background(), "ПМ-21"); s != nil {
		t.Fatalf("expected failed fetch to return nil, got %+v", s)
	}
	client.FetchOne(context.Background(), "ПМ-21")

	if n := atomic.LoadInt64(&hits); n != 2 {
		t.Errorf("expected failed result to stay uncached (2 requests), got %d", n)
	}
}

func TestListGroups(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST to the groups endpoint, got %s", r.Method)
		}
		w.Write([]byte(`["ПМ-21", "ИВТ-33"]`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)

	groups, err := client.ListGroups(context.Background())
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups) != 2 || groups[0] != "ПМ-21" {
		t.Errorf("unexpected groups: %v", groups)
	}
}

func TestProbeGroup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostFormValue("group") == "ПМ-21" {
			w.Write([]byte(mockSchedule))
			return
		}
		// Unknown groups get an empty catalog
		w.Write([]byte(`{"Times": [], "Data": []}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	httpClient := client.HTTPClient()

	if !client.ProbeGroup(context.Background(), httpClient, "ПМ-21") {
		t.Errorf("expected probe of a real group to succeed")
	}
	if client.ProbeGroup(context.Background(), httpClient, "ЖЖ-99") {
		t.Errorf("expected probe of an unknown group to fail on empty Times")
	}
}

func TestParseLocalAddr(t *testing.T) {
	if addr := parseLocalAddr(""); addr != nil {
		t.Errorf("expected empty value to yield no local address")
	}
	addr := parseLocalAddr("192.168.1.10:4000")
	if addr == nil || addr.Port != 4000 || addr.IP.String() != "192.168.1.10" {
		t.Errorf("unexpected parsed address: %v", addr)
	}
	addr = parseLocalAddr("192.168.1.10:oops")
	if addr == nil || addr.Port != 0 {
		t.Errorf("expected bad port to fall back to 0, got %v", addr)
	}
}
