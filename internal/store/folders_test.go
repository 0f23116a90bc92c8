package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirk1998/notes-vault/internal/models"
)

func TestCreateFolder(t *testing.T) {
	s, _ := newTestStore(t, nil)

	work := s.CreateFolder("Work", "")
	projects := s.CreateFolder("Projects", work)
	orphan := s.CreateFolder("Orphan", "missing")

	st := s.State()
	require.Len(t, st.Folders, 4)
	assert.Equal(t, models.Folder{ID: work, Name: "Work", Icon: models.DefaultFolderIcon}, st.Folders[1])
	assert.Equal(t, work, st.Folders[2].ParentID)
	assert.Empty(t, st.Folders[3].ParentID)
	assert.Equal(t, orphan, st.SelectedFolderID)
	assert.NotEqual(t, projects, orphan)
}

func TestRenameFolder(t *testing.T) {
	s, _ := newTestStore(t, nil)
	work := s.CreateFolder("Work", "")

	s.RenameFolder(work, "Office")
	f, _ := s.Folder(work)
	assert.Equal(t, "Office", f.Name)

	before := s.State()
	s.RenameFolder(models.RootFolderID, "Renamed")
	s.RenameFolder("missing", "Renamed")
	assert.Same(t, before, s.State())
}

func TestDeleteRootFolderIsNoop(t *testing.T) {
	s, saver := newTestStore(t, nil)
	s.CreateFolder("Work", "")
	s.CreateNote("")
	s.SelectFolder(models.RootFolderID)
	before := s.State()
	saves := len(saver.saved)

	s.DeleteFolder(models.RootFolderID)

	assert.Same(t, before, s.State())
	assert.Len(t, saver.saved, saves)
}

func TestDeleteFolderReassignsNotes(t *testing.T) {
	s, _ := newTestStore(t, nil)
	work := s.CreateFolder("Work", "")
	inWork := s.CreateNote("")
	inRoot := s.CreateNote(models.RootFolderID)
	other := s.CreateFolder("Other", "")
	inOther := s.CreateNote(other)
	s.SelectFolder(work)

	var observed *models.State
	s.Subscribe(func(c Change) { observed = c.State })

	s.DeleteFolder(work)

	st := s.State()
	assert.False(t, st.HasFolder(work))
	for _, n := range observed.Notes {
		assert.True(t, observed.HasFolder(n.FolderID), "note %s points at a live folder", n.ID)
	}

	n, _ := s.Note(inWork)
	assert.Equal(t, models.RootFolderID, n.FolderID)
	n, _ = s.Note(inRoot)
	assert.Equal(t, models.RootFolderID, n.FolderID)
	n, _ = s.Note(inOther)
	assert.Equal(t, other, n.FolderID)
	assert.Equal(t, models.RootFolderID, st.SelectedFolderID)
}

func TestDeleteFolderLiftsChildren(t *testing.T) {
	s, _ := newTestStore(t, nil)
	work := s.CreateFolder("Work", "")
	projects := s.CreateFolder("Projects", work)
	alpha := s.CreateFolder("Alpha", projects)

	s.DeleteFolder(projects)

	f, ok := s.Folder(alpha)
	require.True(t, ok)
	assert.Equal(t, work, f.ParentID)

	s.DeleteFolder(work)
	f, _ = s.Folder(alpha)
	assert.Empty(t, f.ParentID)
}

func TestMoveFolder(t *testing.T) {
	s, saver := newTestStore(t, nil)
	work := s.CreateFolder("Work", "")
	projects := s.CreateFolder("Projects", work)
	alpha := s.CreateFolder("Alpha", projects)
	home := s.CreateFolder("Home", "")

	cases := []struct {
		name      string
		id        string
		newParent string
	}{
		{"root is immovable", models.RootFolderID, home},
		{"self parenting", work, work},
		{"into child", work, projects},
		{"into grandchild", work, alpha},
		{"unknown folder", "missing", home},
		{"unknown parent", home, "missing"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := s.State()
			saves := len(saver.saved)

			s.MoveFolder(tc.id, tc.newParent)

			assert.Same(t, before, s.State())
			assert.Len(t, saver.saved, saves)
		})
	}

	s.MoveFolder(work, home)
	f, _ := s.Folder(work)
	assert.Equal(t, home, f.ParentID)

	s.MoveFolder(home, alpha)
	f, _ = s.Folder(home)
	assert.Empty(t, f.ParentID, "alpha now lives under home")

	s.MoveFolder(projects, models.RootFolderID)
	f, _ = s.Folder(projects)
	assert.Equal(t, models.RootFolderID, f.ParentID)

	assertForest(t, s.State())
}

func TestMoveFolderScenario(t *testing.T) {
	s, _ := newTestStore(t, nil)
	work := s.CreateFolder("Work", models.RootFolderID)
	projects := s.CreateFolder("Projects", work)

	before := s.State()
	s.MoveFolder(work, projects)
	assert.Same(t, before, s.State(), "moving a folder under its child is rejected")

	s.MoveFolder(projects, "")
	f, _ := s.Folder(projects)
	assert.Empty(t, f.ParentID, "projects is now root level")

	assertForest(t, s.State())
}

func TestToggleAndSelectFolder(t *testing.T) {
	s, _ := newTestStore(t, nil)
	work := s.CreateFolder("Work", "")

	s.ToggleFolder(work)
	f, _ := s.Folder(work)
	assert.True(t, f.IsExpanded)
	s.ToggleFolder(work)
	f, _ = s.Folder(work)
	assert.False(t, f.IsExpanded)

	before := s.State()
	s.ToggleFolder("missing")
	assert.Same(t, before, s.State())

	s.SelectFolder("unknown")
	assert.Equal(t, "unknown", s.State().SelectedFolderID)
}

func assertForest(t *testing.T, st *models.State) {
	t.Helper()
	for _, f := range st.Folders {
		steps := 0
		for id := f.ParentID; id != ""; steps++ {
			require.Less(t, steps, len(st.Folders), "parent chain of %s loops", f.ID)
			idx := st.FolderIndex(id)
			require.GreaterOrEqual(t, idx, 0)
			id = st.Folders[idx].ParentID
		}
	}
}
