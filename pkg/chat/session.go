package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/Kruglikle/Free-room-MIET/pkg/config"
	"github.com/Kruglikle/Free-room-MIET/pkg/schedule"
)

// Conversation states. Each user walks day → pair → corpus and ends up on a
// paginated result view they can refresh or re-enter from.
const (
	stateIdle           = "idle"
	stateChoosingDay    = "choosing_day"
	stateChoosingDate   = "choosing_date"
	stateChoosingPair   = "choosing_pair"
	stateChoosingTime   = "choosing_time"
	stateChoosingCorpus = "choosing_corpus"
	stateShowingResults = "showing_results"
)

// selection is the user's current query. Changing any of it invalidates the
// room snapshot; paging within the same selection reuses it.
type selection struct {
	date      time.Time
	dayName   string
	dayNumber *int
	timeCode  string
	corpus    string
}

// Session drives one user's conversation. All message processing is
// serialized by the session mutex.
type Session struct {
	fsm  *fsm.FSM
	send func(string)
	eng  *schedule.Scheduler
	cfg  *config.Config
	mu   sync.Mutex

	sel   selection
	slots []schedule.Slot

	// snapshot of the last computed free-room list, for pagination
	rooms    []string
	haveList bool
	page     int
}

// NewSession creates a session that writes outgoing messages through send.
func NewSession(cfg *config.Config, eng *schedule.Scheduler, send func(string)) *Session {
	s := &Session{
		send: send,
		eng:  eng,
		cfg:  cfg,
	}

	s.fsm = fsm.NewFSM(
		stateIdle,
		fsm.Events{
			{Name: "start", Src: []string{stateIdle}, Dst: stateChoosingDay},
			{Name: "pick_date", Src: []string{stateChoosingDay}, Dst: stateChoosingDate},
			{Name: "day_chosen", Src: []string{stateChoosingDay, stateChoosingDate}, Dst: stateChoosingPair},
			{Name: "enter_time", Src: []string{stateChoosingPair}, Dst: stateChoosingTime},
			{Name: "pair_chosen", Src: []string{stateChoosingPair, stateChoosingTime}, Dst: stateChoosingCorpus},
			{Name: "corpus_chosen", Src: []string{stateChoosingCorpus}, Dst: stateShowingResults},
			{Name: "change_day", Src: []string{stateShowingResults}, Dst: stateChoosingDay},
			{Name: "change_pair", Src: []string{stateShowingResults}, Dst: stateChoosingPair},
			{Name: "reset", Src: []string{
				stateChoosingDate, stateChoosingPair, stateChoosingTime,
				stateChoosingCorpus, stateShowingResults,
			}, Dst: stateChoosingDay},
		},
		fsm.Callbacks{
			"enter_" + stateChoosingDay:    s.onEnterChoosingDay,
			"enter_" + stateChoosingDate:   s.onEnterChoosingDate,
			"enter_" + stateChoosingPair:   s.onEnterChoosingPair,
			"enter_" + stateChoosingTime:   s.onEnterChoosingTime,
			"enter_" + stateChoosingCorpus: s.onEnterChoosingCorpus,
			"enter_" + stateShowingResults: s.onEnterShowingResults,
		},
	)

	return s
}

// Start greets the user and opens the day prompt.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.send("Привет, МИЭТ:) Подскажу, где найти свободную аудиторию.")
	s.event(ctx, "start")
}

// State returns the current conversation state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fsm.Current()
}

// ProcessMessage handles one inbound user message.
func (s *Session) ProcessMessage(ctx context.Context, input string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return
	}

	// Global navigation, available from any state
	if input == "меню" || input == "menu" || input == "заново" || input == "/start" {
		switch s.fsm.Current() {
		case stateIdle:
			s.event(ctx, "start")
		case stateChoosingDay:
			// Already at the top of the flow, just repeat the prompt
			s.onEnterChoosingDay(ctx, nil)
		default:
			s.event(ctx, "reset")
		}
		return
	}

	switch s.fsm.Current() {
	case stateIdle:
		s.event(ctx, "start")
	case stateChoosingDay:
		s.handleDayInput(ctx, input)
	case stateChoosingDate:
		s.handleDateInput(ctx, input)
	case stateChoosingPair:
		s.handlePairInput(ctx, input)
	case stateChoosingTime:
		s.handleTimeInput(ctx, input)
	case stateChoosingCorpus:
		s.handleCorpusInput(ctx, input)
	case stateShowingResults:
		s.handleResultsInput(ctx, input)
	}
}

// event fires an FSM transition, logging the impossible ones instead of
// leaving the session wedged.
func (s *Session) event(ctx context.Context, name string) {
	if err := s.fsm.Event(ctx, name); err != nil {
		log.Printf("chat: event %s failed in state %s: %v", name, s.fsm.Current(), err)
	}
}

// ============= Input handlers =============

func (s *Session) handleDayInput(ctx context.Context, input string) {
	switch input {
	case "сегодня":
		s.chooseDate(ctx, time.Now())
	case "завтра":
		s.chooseDate(ctx, time.Now().AddDate(0, 0, 1))
	case "дата":
		s.event(ctx, "pick_date")
	default:
		// A date typed right away also works
		if date, ok := schedule.ParseDate(input); ok {
			s.chooseDate(ctx, date)
			return
		}
		s.send("Не понял. Напишите «сегодня», «завтра» или «дата».")
	}
}

func (s *Session) handleDateInput(ctx context.Context, input string) {
	date, ok := schedule.ParseDate(input)
	if !ok {
		s.send("Не распознал дату. Пример: 2026-02-15 или 15.02.")
		return
	}
	s.chooseDate(ctx, date)
}

// chooseDate resolves the date to the upstream day pair and moves on to the
// pair prompt.
func (s *Session) chooseDate(ctx context.Context, date time.Time) {
	dayName, dayNumber := s.eng.MapDate(ctx, date)
	number := dayNumber
	s.sel = selection{date: date, dayName: dayName, dayNumber: &number}
	s.haveList = false
	s.event(ctx, "day_chosen")
}

func (s *Session) handlePairInput(ctx context.Context, input string) {
	if input == "время" {
		s.event(ctx, "enter_time")
		return
	}
	for _, slot := range s.slots {
		if strings.EqualFold(slot.Code, input) {
			s.choosePair(ctx, slot.Code)
			return
		}
	}
	// A wall-clock time works here too
	if clock, ok := schedule.ParseClock(input); ok {
		s.resolveTime(ctx, clock)
		return
	}
	s.send("Не понял. Отправьте номер пары из списка или «время».")
}

func (s *Session) handleTimeInput(ctx context.Context, input string) {
	clock, ok := schedule.ParseClock(input)
	if !ok {
		s.send("Не распознал время. Пример: 12:10")
		return
	}
	s.resolveTime(ctx, clock)
}

func (s *Session) resolveTime(ctx context.Context, clock schedule.Clock) {
	if len(s.slots) == 0 {
		s.slots = s.eng.Times(ctx)
	}
	if len(s.slots) == 0 {
		s.send("Не удалось загрузить список пар. Попробуйте позже.")
		return
	}
	code, ok := schedule.TimeToCode(s.slots, clock)
	if !ok {
		s.send("Время вне диапазона пар.")
		return
	}
	s.choosePair(ctx, code)
}

func (s *Session) choosePair(ctx context.Context, code string) {
	s.sel.timeCode = code
	s.haveList = false
	s.event(ctx, "pair_chosen")
}

func (s *Session) handleCorpusInput(ctx context.Context, input string) {
	if input == "все" || input == "all" {
		s.chooseCorpus(ctx, "all")
		return
	}
	rooms := s.eng.Directory().Rooms()
	for _, prefix := range schedule.CorpusPrefixes(rooms) {
		if prefix == input {
			s.chooseCorpus(ctx, prefix)
			return
		}
	}
	s.send("Не понял корпус. Отправьте номер из списка или «все».")
}

func (s *Session) chooseCorpus(ctx context.Context, prefix string) {
	s.sel.corpus = prefix
	s.haveList = false
	s.page = 0
	s.event(ctx, "corpus_chosen")
}

func (s *Session) handleResultsInput(ctx context.Context, input string) {
	switch input {
	case "далее", ">":
		s.showResults(ctx, s.page+1, false)
	case "назад", "<":
		s.showResults(ctx, s.page-1, false)
	case "обновить":
		s.showResults(ctx, s.page, true)
	case "день":
		s.event(ctx, "change_day")
	case "пара":
		s.event(ctx, "change_pair")
	default:
		s.send("Команды: «далее», «назад», «обновить», «день», «пара», «меню».")
	}
}

// ============= State prompts =============

func (s *Session) onEnterChoosingDay(_ context.Context, _ *fsm.Event) {
	s.send("Выберите день: «сегодня», «завтра» или «дата».")
}

func (s *Session) onEnterChoosingDate(_ context.Context, _ *fsm.Event) {
	s.send("Введите дату (YYYY-MM-DD или DD.MM):")
}

func (s *Session) onEnterChoosingPair(ctx context.Context, _ *fsm.Event) {
	if len(s.eng.Directory().Groups()) == 0 {
		s.send("Список групп пуст. Запустите «free-room-miet groups».")
		return
	}
	s.slots = s.eng.Times(ctx)
	if len(s.slots) == 0 {
		s.send("Не удалось загрузить список пар. Попробуйте позже.")
		return
	}

	var b strings.Builder
	b.WriteString("Выберите пару (отправьте номер) или напишите «время»:\n")
	for _, slot := range s.slots {
		if slot.Label != "" {
			fmt.Fprintf(&b, "%s. %s\n", slot.Code, slot.Label)
		} else {
			fmt.Fprintf(&b, "Пара %s\n", slot.Code)
		}
	}
	s.send(strings.TrimRight(b.String(), "\n"))
}

func (s *Session) onEnterChoosingTime(_ context.Context, _ *fsm.Event) {
	s.send("Введите время (HH:MM):")
}

func (s *Session) onEnterChoosingCorpus(ctx context.Context, _ *fsm.Event) {
	rooms := s.eng.Directory().EnsureRooms(ctx)
	if len(rooms) == 0 {
		s.send("Список аудиторий пуст, не удалось его собрать. Попробуйте позже.")
		return
	}

	var b strings.Builder
	b.WriteString("Выберите корпус (отправьте номер) или «все»:\n")
	for _, prefix := range schedule.CorpusPrefixes(rooms) {
		fmt.Fprintf(&b, "%sxx\n", prefix)
	}
	s.send(strings.TrimRight(b.String(), "\n"))
}

func (s *Session) onEnterShowingResults(ctx context.Context, _ *fsm.Event) {
	s.showResults(ctx, 0, true)
}

// showResults renders one page of the free-room list. refresh recomputes
// the snapshot; otherwise pagination reuses the one from the current
// selection.
func (s *Session) showResults(ctx context.Context, page int, refresh bool) {
	if refresh || !s.haveList {
		rooms := s.eng.Directory().EnsureRooms(ctx)
		if len(rooms) == 0 {
			s.send("Список аудиторий пуст, не удалось его собрать. Попробуйте позже.")
			return
		}

		occupied, success := s.eng.AggregateOccupied(ctx, s.sel.dayName, s.sel.dayNumber, s.sel.timeCode)
		if success == 0 {
			s.send("Расписание сейчас недоступно. Попробуйте позже.")
			return
		}
		s.rooms = schedule.FilterByPrefix(s.eng.FreeRooms(occupied), s.sel.corpus)
		s.haveList = true
	}

	totalPages := schedule.Pages(len(s.rooms), s.cfg.PageSize)
	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}
	s.page = page

	s.send(renderResults(s.sel, s.rooms, page, s.cfg.PageSize, totalPages))
}
