package store

import (
	"slices"

	"github.com/amirk1998/notes-vault/internal/models"
)

// CreateFolder appends a collapsed folder with the default icon, selects it
// and returns its id. A parentID that names no folder creates the folder at
// root level.
func (s *Store) CreateFolder(name, parentID string) string {
	var id string
	s.apply(ActionFolderCreated, "", func(cur *models.State) *models.State {
		id = s.newID()
		if parentID != "" && !cur.HasFolder(parentID) {
			parentID = ""
		}

		folder := models.Folder{
			ID:       id,
			Name:     name,
			Icon:     models.DefaultFolderIcon,
			ParentID: parentID,
		}

		next := cur.Clone()
		next.Folders = append(slices.Clip(cur.Folders), folder)
		next.SelectedFolderID = id
		return next
	})
	return id
}

func (s *Store) RenameFolder(id, name string) {
	if id == models.RootFolderID {
		return
	}
	s.apply(ActionFolderRenamed, id, func(cur *models.State) *models.State {
		return editFolder(cur, id, func(f *models.Folder) { f.Name = name })
	})
}

// DeleteFolder removes the folder. Its notes move to the root folder and its
// child folders move up to the deleted folder's parent, in the same state
// transition. A selected folder falls back to the root folder.
func (s *Store) DeleteFolder(id string) {
	if id == models.RootFolderID {
		return
	}
	s.apply(ActionFolderDeleted, id, func(cur *models.State) *models.State {
		idx := cur.FolderIndex(id)
		if idx < 0 {
			return nil
		}
		parentID := cur.Folders[idx].ParentID

		folders := make([]models.Folder, 0, len(cur.Folders)-1)
		for _, f := range cur.Folders {
			if f.ID == id {
				continue
			}
			if f.ParentID == id {
				f.ParentID = parentID
			}
			folders = append(folders, f)
		}

		notes := cur.Notes
		if slices.ContainsFunc(cur.Notes, func(n models.Note) bool { return n.FolderID == id }) {
			notes = make([]models.Note, len(cur.Notes))
			for i, n := range cur.Notes {
				if n.FolderID == id {
					n.FolderID = models.RootFolderID
				}
				notes[i] = n
			}
		}

		next := cur.Clone()
		next.Folders = folders
		next.Notes = notes
		if next.SelectedFolderID == id {
			next.SelectedFolderID = models.RootFolderID
		}
		return next
	})
}

// MoveFolder reparents the folder under newParentID, or to root level when
// newParentID is empty. The root folder never moves, and a folder cannot be
// moved under itself or any of its descendants.
func (s *Store) MoveFolder(id, newParentID string) {
	if id == models.RootFolderID || id == newParentID {
		return
	}
	s.apply(ActionFolderMoved, id, func(cur *models.State) *models.State {
		if !cur.HasFolder(id) {
			return nil
		}
		if newParentID != "" {
			if !cur.HasFolder(newParentID) || isAncestorOrSelf(cur, id, newParentID) {
				return nil
			}
		}
		return editFolder(cur, id, func(f *models.Folder) { f.ParentID = newParentID })
	})
}

// isAncestorOrSelf walks upward from folderID and reports whether
// candidate appears on the chain.
func isAncestorOrSelf(cur *models.State, candidate, folderID string) bool {
	seen := make(map[string]bool)
	for id := folderID; id != ""; {
		if id == candidate {
			return true
		}
		if seen[id] {
			return false
		}
		seen[id] = true

		idx := cur.FolderIndex(id)
		if idx < 0 {
			return false
		}
		id = cur.Folders[idx].ParentID
	}
	return false
}

func (s *Store) ToggleFolder(id string) {
	s.apply(ActionFolderToggled, id, func(cur *models.State) *models.State {
		return editFolder(cur, id, func(f *models.Folder) { f.IsExpanded = !f.IsExpanded })
	})
}

// SelectFolder selects id without checking that it exists.
func (s *Store) SelectFolder(id string) {
	s.apply(ActionFolderSelected, id, func(cur *models.State) *models.State {
		next := cur.Clone()
		next.SelectedFolderID = id
		return next
	})
}

func editFolder(cur *models.State, id string, edit func(f *models.Folder)) *models.State {
	idx := cur.FolderIndex(id)
	if idx < 0 {
		return nil
	}

	folders := slices.Clone(cur.Folders)
	edit(&folders[idx])

	next := cur.Clone()
	next.Folders = folders
	return next
}
