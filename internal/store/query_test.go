package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirk1998/notes-vault/internal/models"
)

func noteIDs(notes []models.Note) []string {
	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestFilteredNotesSearch(t *testing.T) {
	s, _ := newTestStore(t, nil)
	s.SelectFolder(models.AllFolderID)

	title := s.CreateNote("")
	s.UpdateNote(title, models.NoteUpdate{Title: ptr("Hello World")})
	content := s.CreateNote("")
	s.UpdateNote(content, models.NoteUpdate{Content: ptr("say hello")})
	tagged := s.CreateNote("")
	s.UpdateNote(tagged, models.NoteUpdate{Tags: []string{"hello-tag"}})
	miss := s.CreateNote("")
	s.UpdateNote(miss, models.NoteUpdate{Title: ptr("bye"), Content: ptr("nothing"), Tags: []string{"other"}})

	s.SetSearchQuery("hello")
	assert.Equal(t, []string{tagged, content, title}, noteIDs(s.FilteredNotes()))

	s.SetSearchQuery("HELLO")
	assert.Len(t, s.FilteredNotes(), 3)

	s.SetSearchQuery("")
	assert.Len(t, s.FilteredNotes(), 4)
}

func TestFilteredNotesFolderAndTag(t *testing.T) {
	s, _ := newTestStore(t, nil)
	work := s.CreateFolder("Work", "")
	a := s.CreateNote(work)
	s.UpdateNote(a, models.NoteUpdate{Tags: []string{"urgent"}, Title: ptr("report")})
	b := s.CreateNote(work)
	s.UpdateNote(b, models.NoteUpdate{Title: ptr("report draft")})
	c := s.CreateNote(models.RootFolderID)
	s.UpdateNote(c, models.NoteUpdate{Tags: []string{"urgent"}})

	s.SelectFolder(work)
	assert.Equal(t, []string{b, a}, noteIDs(s.FilteredNotes()))

	s.SetTagFilter("urgent")
	assert.Equal(t, []string{a}, noteIDs(s.FilteredNotes()))

	s.SelectFolder(models.AllFolderID)
	assert.Equal(t, []string{c, a}, noteIDs(s.FilteredNotes()))

	s.SetSearchQuery("report")
	assert.Equal(t, []string{a}, noteIDs(s.FilteredNotes()), "filters are conjunctive")

	s.SetTagFilter("")
	s.SetSearchQuery("")
	s.SelectFolder("")
	assert.Len(t, s.FilteredNotes(), 3)
}

func TestAllTags(t *testing.T) {
	s, _ := newTestStore(t, nil)
	a := s.CreateNote("")
	s.UpdateNote(a, models.NoteUpdate{Tags: []string{"b", "a"}})
	b := s.CreateNote("")
	s.UpdateNote(b, models.NoteUpdate{Tags: []string{"a", "c"}})

	assert.Equal(t, []string{"a", "b", "c"}, s.AllTags())
}

func TestAllTagsEmpty(t *testing.T) {
	s, _ := newTestStore(t, nil)
	assert.Empty(t, s.AllTags())
}

func TestGroupNotes(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	at := func(d time.Duration) time.Time { return now.Add(-d) }

	notes := []models.Note{
		{ID: "pinned", IsPinned: true, UpdatedAt: at(90 * 24 * time.Hour)},
		{ID: "today", UpdatedAt: at(time.Hour)},
		{ID: "yesterday", UpdatedAt: at(20 * time.Hour)},
		{ID: "week", UpdatedAt: at(7 * 24 * time.Hour)},
		{ID: "month", UpdatedAt: at(20 * 24 * time.Hour)},
		{ID: "old", UpdatedAt: at(45 * 24 * time.Hour)},
	}

	sections := GroupNotes(notes, now)
	require.Len(t, sections, 5)
	assert.Equal(t, SectionPinned, sections[0].Label)
	assert.Equal(t, []string{"pinned"}, noteIDs(sections[0].Notes))
	assert.Equal(t, SectionToday, sections[1].Label)
	assert.Equal(t, []string{"today"}, noteIDs(sections[1].Notes))
	assert.Equal(t, SectionWeek, sections[2].Label)
	assert.Equal(t, []string{"yesterday", "week"}, noteIDs(sections[2].Notes))
	assert.Equal(t, SectionMonth, sections[3].Label)
	assert.Equal(t, SectionOlder, sections[4].Label)
	assert.Equal(t, []string{"old"}, noteIDs(sections[4].Notes))
}

func TestGroupNotesCountsCalendarDays(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	notes := []models.Note{
		{ID: "seven-days-late", UpdatedAt: time.Date(2026, 3, 7, 23, 30, 0, 0, time.UTC)},
		{ID: "eight-days-morning", UpdatedAt: time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC)},
		{ID: "thirty-days", UpdatedAt: time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)},
		{ID: "thirty-one-days", UpdatedAt: time.Date(2026, 2, 11, 23, 59, 0, 0, time.UTC)},
		{ID: "tomorrow", UpdatedAt: time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)},
	}

	sections := GroupNotes(notes, now)
	require.Len(t, sections, 4)
	assert.Equal(t, SectionToday, sections[0].Label)
	assert.Equal(t, []string{"tomorrow"}, noteIDs(sections[0].Notes))
	assert.Equal(t, SectionWeek, sections[1].Label)
	assert.Equal(t, []string{"seven-days-late"}, noteIDs(sections[1].Notes))
	assert.Equal(t, SectionMonth, sections[2].Label)
	assert.Equal(t, []string{"eight-days-morning", "thirty-days"}, noteIDs(sections[2].Notes))
	assert.Equal(t, SectionOlder, sections[3].Label)
	assert.Equal(t, []string{"thirty-one-days"}, noteIDs(sections[3].Notes))
}

func TestGroupNotesOmitsEmptySections(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	sections := GroupNotes([]models.Note{{ID: "a", UpdatedAt: now}}, now)

	require.Len(t, sections, 1)
	assert.Equal(t, SectionToday, sections[0].Label)
}

func TestChildrenAndAncestors(t *testing.T) {
	s, _ := newTestStore(t, nil)
	work := s.CreateFolder("Work", "")
	projects := s.CreateFolder("Projects", work)
	alpha := s.CreateFolder("Alpha", projects)
	s.CreateFolder("Beta", projects)

	st := s.State()
	children := Children(st, projects)
	require.Len(t, children, 2)
	assert.Equal(t, alpha, children[0].ID)

	roots := Children(st, "")
	assert.Len(t, roots, 2)

	chain := Ancestors(st, alpha)
	require.Len(t, chain, 2)
	assert.Equal(t, work, chain[0].ID)
	assert.Equal(t, projects, chain[1].ID)

	assert.Nil(t, Ancestors(st, "missing"))
	assert.Empty(t, Ancestors(st, work))
}
