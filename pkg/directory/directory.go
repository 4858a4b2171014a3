package directory

import (
	"context"
	"log"
	"sync"

	"github.com/Kruglikle/Free-room-MIET/pkg/config"
	"github.com/Kruglikle/Free-room-MIET/pkg/upstream"
)

// Directory owns the sets of known groups and rooms. Both are kept sorted
// and duplicate-free, mirrored to flat JSON files, and rebuilt from the
// network when empty.
type Directory struct {
	cfg    *config.Config
	client *upstream.Client

	mu     sync.Mutex
	groups []string
	rooms  []string

	// buildMu serializes room rebuilds: callers that arrive while a build
	// is running wait for it and reuse its result.
	buildMu sync.Mutex
}

func New(cfg *config.Config, client *upstream.Client) *Directory {
	return &Directory{cfg: cfg, client: client}
}

// LoadFromDisk populates both sets from their persisted files.
func (d *Directory) LoadFromDisk() {
	groups := LoadList(d.cfg.GroupsFile)
	rooms := LoadList(d.cfg.RoomsFile)

	d.mu.Lock()
	d.groups = groups
	d.rooms = rooms
	d.mu.Unlock()
}

// Groups returns a copy of the known group names, sorted.
func (d *Directory) Groups() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.groups...)
}

// Rooms returns a copy of the known room names, sorted.
func (d *Directory) Rooms() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.rooms...)
}

// RefreshGroups runs the discovery chain and, when it yields anything,
// replaces the in-memory set and persists it. An empty result leaves the
// previous set untouched.
func (d *Directory) RefreshGroups(ctx context.Context, allowGuess bool) []string {
	groups := d.discoverGroups(ctx, allowGuess)
	if len(groups) == 0 {
		return nil
	}

	d.mu.Lock()
	d.groups = groups
	d.mu.Unlock()

	if err := SaveList(d.cfg.GroupsFile, groups); err != nil {
		log.Printf("failed to persist groups: %v", err)
	}
	return groups
}

// EnsureRooms returns the room set, lazily building it from every known
// group's schedule when it is empty. Only one build runs at a time;
// concurrent callers block on the same build instead of starting their own.
func (d *Directory) EnsureRooms(ctx context.Context) []string {
	if rooms := d.Rooms(); len(rooms) > 0 {
		return rooms
	}

	d.buildMu.Lock()
	defer d.buildMu.Unlock()

	// A parallel caller may have finished the build while we waited
	if rooms := d.Rooms(); len(rooms) > 0 {
		return rooms
	}

	log.Printf("room list is empty, rebuilding from %d group schedules", len(d.Groups()))
	return d.rebuildRoomsLocked(ctx)
}

// RebuildRooms forces a room rebuild regardless of the current set.
func (d *Directory) RebuildRooms(ctx context.Context) []string {
	d.buildMu.Lock()
	defer d.buildMu.Unlock()
	return d.rebuildRoomsLocked(ctx)
}

func (d *Directory) rebuildRoomsLocked(ctx context.Context) []string {
	schedules := d.client.FetchAll(ctx, d.Groups())

	seen := make(map[string]bool)
	var rooms []string
	for _, schedule := range schedules {
		if schedule == nil {
			continue
		}
		for _, item := range schedule.Items {
			if item.Room != "" && !seen[item.Room] {
				seen[item.Room] = true
				rooms = append(rooms, item.Room)
			}
		}
	}
	rooms = Normalize(rooms)

	if len(rooms) == 0 {
		log.Printf("room rebuild produced nothing, keeping previous set")
		return nil
	}

	d.mu.Lock()
	d.rooms = rooms
	d.mu.Unlock()

	if err := SaveList(d.cfg.RoomsFile, rooms); err != nil {
		log.Printf("failed to persist rooms: %v", err)
	}
	return rooms
}
