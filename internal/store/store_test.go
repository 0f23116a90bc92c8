package store

import (
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirk1998/notes-vault/internal/models"
)

type recordingSaver struct {
	saved []*models.State
}

func (r *recordingSaver) Save(state *models.State) {
	r.saved = append(r.saved, state)
}

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, initial *models.State) (*Store, *recordingSaver) {
	t.Helper()

	tick := 0
	clock := func() time.Time {
		tick++
		return baseTime.Add(time.Duration(tick) * time.Second)
	}
	seq := 0
	ids := func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}

	saver := &recordingSaver{}
	s := New(initial, WithSaver(saver), WithClock(clock), WithIDGenerator(ids))
	return s, saver
}

func ptr[T any](v T) *T { return &v }

func TestNewStartsWithRootFolder(t *testing.T) {
	s, _ := newTestStore(t, nil)

	st := s.State()
	require.Len(t, st.Folders, 1)
	assert.Equal(t, models.RootFolderID, st.Folders[0].ID)
	assert.Equal(t, models.RootFolderName, st.Folders[0].Name)
	assert.Equal(t, models.RootFolderID, st.SelectedFolderID)
	assert.Empty(t, st.Notes)
}

func TestCreateNote(t *testing.T) {
	s, saver := newTestStore(t, nil)

	first := s.CreateNote("")
	second := s.CreateNote("")

	st := s.State()
	require.Len(t, st.Notes, 2)
	assert.Equal(t, second, st.Notes[0].ID, "newest note goes first")
	assert.Equal(t, first, st.Notes[1].ID)
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, st.SelectedNoteID)

	n := st.Notes[0]
	assert.Empty(t, n.Title)
	assert.Empty(t, n.Content)
	assert.Empty(t, n.Tags)
	assert.Equal(t, models.RootFolderID, n.FolderID)
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)
	assert.True(t, st.Notes[0].CreatedAt.After(st.Notes[1].CreatedAt))

	assert.Len(t, saver.saved, 2)
}

func TestCreateNoteTimestampsStrictlyIncrease(t *testing.T) {
	frozen := func() time.Time { return baseTime }
	s := New(nil, WithClock(frozen))

	a := s.CreateNote("")
	b := s.CreateNote("")

	na, _ := s.Note(a)
	nb, _ := s.Note(b)
	assert.True(t, nb.CreatedAt.After(na.CreatedAt))
}

func TestCreateNoteFolderSelection(t *testing.T) {
	s, _ := newTestStore(t, nil)
	work := s.CreateFolder("Work", "")

	id := s.CreateNote("")
	n, _ := s.Note(id)
	assert.Equal(t, work, n.FolderID, "defaults to the selected folder")

	id = s.CreateNote(models.RootFolderID)
	n, _ = s.Note(id)
	assert.Equal(t, models.RootFolderID, n.FolderID, "explicit folder wins")

	s.SelectFolder(models.AllFolderID)
	id = s.CreateNote("")
	n, _ = s.Note(id)
	assert.Equal(t, models.RootFolderID, n.FolderID, "the all view is not a folder")

	id = s.CreateNote("missing")
	n, _ = s.Note(id)
	assert.Equal(t, models.RootFolderID, n.FolderID)
}

func TestUpdateNoteChangesOnlyGivenFields(t *testing.T) {
	s, _ := newTestStore(t, nil)
	id := s.CreateNote("")
	s.UpdateNote(id, models.NoteUpdate{Content: ptr("body"), Tags: []string{"a"}})
	before, _ := s.Note(id)

	s.UpdateNote(id, models.NoteUpdate{Title: ptr("X")})
	after, _ := s.Note(id)

	assert.Equal(t, "X", after.Title)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))

	after.Title = before.Title
	after.UpdatedAt = before.UpdatedAt
	assert.Equal(t, before, after)
}

func TestUpdateNoteReapplyOnlyAdvancesUpdatedAt(t *testing.T) {
	s, _ := newTestStore(t, nil)
	id := s.CreateNote("")

	s.UpdateNote(id, models.NoteUpdate{Title: ptr("X")})
	first, _ := s.Note(id)
	s.UpdateNote(id, models.NoteUpdate{Title: ptr("X")})
	second, _ := s.Note(id)

	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	second.UpdatedAt = first.UpdatedAt
	assert.Equal(t, first, second)
}

func TestUpdateNoteDedupesTags(t *testing.T) {
	s, _ := newTestStore(t, nil)
	id := s.CreateNote("")

	s.UpdateNote(id, models.NoteUpdate{Tags: []string{"b", "a", "b"}})

	n, _ := s.Note(id)
	assert.Equal(t, []string{"b", "a"}, n.Tags)
}

func TestUpdateNoteIgnoresUnknownTargets(t *testing.T) {
	s, saver := newTestStore(t, nil)
	id := s.CreateNote("")
	before := s.State()
	saves := len(saver.saved)

	s.UpdateNote("missing", models.NoteUpdate{Title: ptr("X")})
	s.UpdateNote(id, models.NoteUpdate{FolderID: ptr("missing")})

	assert.Same(t, before, s.State())
	assert.Len(t, saver.saved, saves)
}

func TestTagHelpers(t *testing.T) {
	s, _ := newTestStore(t, nil)
	id := s.CreateNote("")

	s.AddTag(id, " work ")
	s.AddTag(id, "home")
	before := s.State()
	s.AddTag(id, "work")
	s.AddTag(id, "   ")
	assert.Same(t, before, s.State(), "duplicate and blank tags are ignored")

	n, _ := s.Note(id)
	assert.Equal(t, []string{"work", "home"}, n.Tags)

	s.RemoveTag(id, "work")
	n, _ = s.Note(id)
	assert.Equal(t, []string{"home"}, n.Tags)

	s.TogglePin(id)
	n, _ = s.Note(id)
	assert.True(t, n.IsPinned)
}

func TestDeleteNote(t *testing.T) {
	s, _ := newTestStore(t, nil)
	keep := s.CreateNote("")
	gone := s.CreateNote("")

	s.DeleteNote(gone)

	st := s.State()
	require.Len(t, st.Notes, 1)
	assert.Equal(t, keep, st.Notes[0].ID)
	assert.Empty(t, st.SelectedNoteID, "deleting the selected note clears the selection")

	s.SelectNote(keep)
	other := s.CreateNote("")
	s.SelectNote(keep)
	s.DeleteNote(other)
	assert.Equal(t, keep, s.State().SelectedNoteID)

	before := s.State()
	s.DeleteNote("missing")
	assert.Same(t, before, s.State())
}

func TestSelectNoteDoesNotValidate(t *testing.T) {
	s, _ := newTestStore(t, nil)

	s.SelectNote("nope")
	assert.Equal(t, "nope", s.State().SelectedNoteID)

	_, ok := s.Note("nope")
	assert.False(t, ok)

	s.SelectNote("")
	assert.Empty(t, s.State().SelectedNoteID)
}

func TestMutationsCopyOnWrite(t *testing.T) {
	s, _ := newTestStore(t, nil)
	id := s.CreateNote("")
	before := s.State()

	s.UpdateNote(id, models.NoteUpdate{Title: ptr("new")})
	after := s.State()

	assert.NotSame(t, before, after)
	assert.Empty(t, before.Notes[0].Title, "published snapshots never change")
	assert.Equal(t, "new", after.Notes[0].Title)
	assert.Same(t, &before.Folders[0], &after.Folders[0], "untouched collections are shared")
}

func TestSubscribe(t *testing.T) {
	s, saver := newTestStore(t, nil)

	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) {
		assert.Same(t, saver.saved[len(saver.saved)-1], c.State, "persisted before observers run")
		changes = append(changes, c)
	})

	id := s.CreateNote("")
	s.DeleteNote("missing")
	s.RenameFolder(models.RootFolderID, "x")
	s.DeleteNote(id)

	require.Len(t, changes, 2)
	assert.Equal(t, ActionNoteCreated, changes[0].Action)
	assert.Equal(t, ActionNoteDeleted, changes[1].Action)
	assert.Equal(t, id, changes[1].TargetID)
	assert.Same(t, s.State(), changes[1].State)

	unsubscribe()
	s.CreateNote("")
	assert.Len(t, changes, 2)
}

func TestListenerMayCallBackIntoStore(t *testing.T) {
	s, _ := newTestStore(t, nil)

	var seen []Action
	s.Subscribe(func(c Change) {
		seen = append(seen, c.Action)
		if c.Action == ActionNoteCreated {
			s.SetSearchQuery("")
		}
	})

	s.CreateNote("")
	assert.Equal(t, []Action{ActionNoteCreated, ActionSearchChanged}, seen)
}

func TestFilterState(t *testing.T) {
	s, saver := newTestStore(t, nil)

	s.SetSearchQuery("hello")
	s.SetTagFilter("work")
	s.SetSidebarCollapsed(true)

	st := s.State()
	assert.Equal(t, "hello", st.SearchQuery)
	assert.Equal(t, "work", st.TagFilter)
	assert.True(t, st.SidebarCollapsed)
	assert.Len(t, saver.saved, 3)
}

func TestRestore(t *testing.T) {
	s, _ := newTestStore(t, nil)
	s.CreateNote("")

	restored := &models.State{
		Notes: []models.Note{{ID: "n1", Title: "from backup", FolderID: "gone", CreatedAt: baseTime, UpdatedAt: baseTime}},
	}
	s.Restore(restored)

	st := s.State()
	require.Len(t, st.Notes, 1)
	assert.Equal(t, "from backup", st.Notes[0].Title)
	assert.Equal(t, models.RootFolderID, st.Notes[0].FolderID)
	assert.True(t, st.HasFolder(models.RootFolderID))

	s.Restore(nil)
	assert.Len(t, s.State().Notes, 1)
}

type lastSaver struct {
	mu   sync.Mutex
	last *models.State
}

func (l *lastSaver) Save(state *models.State) {
	runtime.Gosched()
	l.mu.Lock()
	l.last = state
	l.mu.Unlock()
}

func TestConcurrentMutationsPublishInCommitOrder(t *testing.T) {
	for round := 0; round < 50; round++ {
		saver := &lastSaver{}
		s := New(nil, WithSaver(saver))
		id := s.CreateNote("")

		var (
			seenMu sync.Mutex
			seen   []*models.State
		)
		s.Subscribe(func(c Change) {
			seenMu.Lock()
			seen = append(seen, c.State)
			seenMu.Unlock()
		})

		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					s.TogglePin(id)
					runtime.Gosched()
				}
			}()
		}
		wg.Wait()

		final := s.State()
		saver.mu.Lock()
		require.Same(t, final, saver.last, "round %d: last saved snapshot is stale", round)
		saver.mu.Unlock()

		seenMu.Lock()
		require.Len(t, seen, 200)
		assert.Same(t, final, seen[len(seen)-1], "round %d: last notified snapshot is stale", round)
		for i := 1; i < len(seen); i++ {
			require.True(t, seen[i].Notes[0].UpdatedAt.After(seen[i-1].Notes[0].UpdatedAt),
				"round %d: change %d delivered out of order", round, i)
		}
		seenMu.Unlock()
	}
}
