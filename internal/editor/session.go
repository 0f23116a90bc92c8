// Package editor buffers title and content edits to one note and commits
// them to the store after a quiet period.
package editor

import (
	"sync"
	"time"

	"github.com/amirk1998/notes-vault/internal/models"
	"github.com/amirk1998/notes-vault/internal/store"
)

const DefaultDelay = 500 * time.Millisecond

type Session struct {
	store  *store.Store
	noteID string

	mu      sync.Mutex
	title   *string
	content *string

	debouncer *Debouncer
}

// NewSession starts an edit session for noteID. A non-positive delay uses
// DefaultDelay.
func NewSession(s *store.Store, noteID string, delay time.Duration) *Session {
	if delay <= 0 {
		delay = DefaultDelay
	}
	sess := &Session{store: s, noteID: noteID}
	sess.debouncer = NewDebouncer(delay, sess.commit)
	return sess
}

func (s *Session) NoteID() string {
	return s.noteID
}

func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	s.title = &title
	s.mu.Unlock()
	s.debouncer.Trigger()
}

func (s *Session) SetContent(content string) {
	s.mu.Lock()
	s.content = &content
	s.mu.Unlock()
	s.debouncer.Trigger()
}

// Flush commits buffered edits immediately.
func (s *Session) Flush() {
	s.debouncer.Flush()
}

// Discard drops buffered edits without committing them.
func (s *Session) Discard() {
	s.debouncer.Cancel()
	s.mu.Lock()
	s.title, s.content = nil, nil
	s.mu.Unlock()
}

// Close commits what is buffered and ends the session.
func (s *Session) Close() {
	s.Flush()
}

func (s *Session) commit() {
	s.mu.Lock()
	update := models.NoteUpdate{Title: s.title, Content: s.content}
	s.title, s.content = nil, nil
	s.mu.Unlock()

	if update.IsEmpty() {
		return
	}
	s.store.UpdateNote(s.noteID, update)
}
