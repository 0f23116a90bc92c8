// Package store holds the notes-and-folders store: the canonical notes,
// folders and selection state, the operations that mutate them and the
// queries derived from them.
//
// Every operation is total. Unknown ids and attempts to break a folder
// invariant leave the state untouched instead of returning an error. An
// operation that applies publishes a new *models.State and hands it to the
// Saver. Subscribers see changes in commit order; a change made while
// another goroutine is notifying is delivered by that goroutine.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amirk1998/notes-vault/internal/models"
)

type Action string

const (
	ActionNoteCreated      Action = "NOTE_CREATED"
	ActionNoteUpdated      Action = "NOTE_UPDATED"
	ActionNoteDeleted      Action = "NOTE_DELETED"
	ActionNoteSelected     Action = "NOTE_SELECTED"
	ActionFolderCreated    Action = "FOLDER_CREATED"
	ActionFolderRenamed    Action = "FOLDER_RENAMED"
	ActionFolderDeleted    Action = "FOLDER_DELETED"
	ActionFolderMoved      Action = "FOLDER_MOVED"
	ActionFolderToggled    Action = "FOLDER_TOGGLED"
	ActionFolderSelected   Action = "FOLDER_SELECTED"
	ActionSearchChanged    Action = "SEARCH_CHANGED"
	ActionTagFilterChanged Action = "TAG_FILTER_CHANGED"
	ActionSidebarToggled   Action = "SIDEBAR_TOGGLED"
	ActionStateRestored    Action = "STATE_RESTORED"
)

// Change describes one applied mutation. State is the snapshot the mutation
// produced.
type Change struct {
	Action   Action
	TargetID string
	State    *models.State
}

type Listener func(Change)

// Saver receives every published snapshot in commit order. Save is called
// with the store lock held: it must not block on storage I/O or call back
// into the store.
type Saver interface {
	Save(state *models.State)
}

type Store struct {
	mu    sync.Mutex
	state *models.State

	// outbox holds applied changes not yet delivered to listeners, in
	// commit order. Guarded by mu.
	outbox     []Change
	delivering bool

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int

	saver     Saver
	clock     func() time.Time
	lastStamp time.Time
	newID     func() string
	log       zerolog.Logger
}

type Option func(*Store)

func WithSaver(saver Saver) Option {
	return func(s *Store) { s.saver = saver }
}

// WithClock replaces the wall clock used for note timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithIDGenerator replaces the generator used for new note and folder ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a store seeded with initial, or with a fresh state when
// initial is nil. The seed is repaired before use; see Repair.
func New(initial *models.State, opts ...Option) *Store {
	s := &Store{
		listeners: make(map[int]Listener),
		clock:     time.Now,
		newID:     uuid.NewString,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if initial == nil {
		initial = models.NewState()
	}
	s.state = Repair(initial)
	s.lastStamp = latestStamp(s.state)

	return s
}

// State returns the current snapshot. The returned value must be treated as
// read-only.
func (s *Store) State() *models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l for every applied mutation and returns a function
// that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

// Restore replaces the whole state, as when loading a backup.
func (s *Store) Restore(state *models.State) {
	if state == nil {
		return
	}
	repaired := Repair(state)
	s.apply(ActionStateRestored, "", func(*models.State) *models.State {
		return repaired
	})
}

// apply runs fn against the current state under the store lock. A nil
// result means the operation was rejected and nothing is published. The
// saver receives snapshots under the lock, so they arrive in commit order.
func (s *Store) apply(action Action, targetID string, fn func(cur *models.State) *models.State) bool {
	s.mu.Lock()
	next := fn(s.state)
	if next == nil {
		s.mu.Unlock()
		return false
	}
	s.state = next
	if s.saver != nil {
		s.saver.Save(next)
	}
	s.outbox = append(s.outbox, Change{Action: action, TargetID: targetID, State: next})
	if s.delivering {
		// The goroutine already delivering picks this change up after the
		// ones queued before it.
		s.mu.Unlock()
		return true
	}
	s.delivering = true
	s.mu.Unlock()

	s.deliver()
	s.log.Debug().Str("action", string(action)).Str("target", targetID).Msg("store change applied")
	return true
}

// deliver hands queued changes to listeners one at a time until the outbox
// is empty. Listeners run without the store lock and may mutate the store;
// those changes are queued and delivered by this same loop.
func (s *Store) deliver() {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.delivering = false
			s.mu.Unlock()
			panic(r)
		}
	}()

	for {
		s.mu.Lock()
		if len(s.outbox) == 0 {
			s.outbox = nil
			s.delivering = false
			s.mu.Unlock()
			return
		}
		change := s.outbox[0]
		s.outbox = s.outbox[1:]
		s.mu.Unlock()

		s.notify(change)
	}
}

func (s *Store) notify(change Change) {
	s.listenersMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		l(change)
	}
}

// now returns a timestamp strictly after every timestamp the store has
// issued or loaded. Must be called with s.mu held.
func (s *Store) now() time.Time {
	t := s.clock().UTC().Round(0)
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = t
	return t
}

func latestStamp(state *models.State) time.Time {
	var latest time.Time
	for _, n := range state.Notes {
		if n.CreatedAt.After(latest) {
			latest = n.CreatedAt
		}
		if n.UpdatedAt.After(latest) {
			latest = n.UpdatedAt
		}
	}
	return latest
}
