package store

import (
	"slices"
	"strings"

	"github.com/amirk1998/notes-vault/internal/models"
)

// CreateNote inserts an empty note at the front of the collection, selects
// it and returns its id. The note goes to folderID when that folder exists,
// otherwise to the selected folder, otherwise to the root folder.
func (s *Store) CreateNote(folderID string) string {
	var id string
	s.apply(ActionNoteCreated, "", func(cur *models.State) *models.State {
		id = s.newID()
		now := s.now()

		note := models.Note{
			ID:        id,
			Title:     "",
			Content:   "",
			Tags:      []string{},
			FolderID:  targetFolder(cur, folderID),
			CreatedAt: now,
			UpdatedAt: now,
		}

		notes := make([]models.Note, 0, len(cur.Notes)+1)
		notes = append(notes, note)
		notes = append(notes, cur.Notes...)

		next := cur.Clone()
		next.Notes = notes
		next.SelectedNoteID = id
		return next
	})
	return id
}

func targetFolder(cur *models.State, folderID string) string {
	if folderID != "" && cur.HasFolder(folderID) {
		return folderID
	}
	if sel := cur.SelectedFolderID; sel != "" && sel != models.AllFolderID && cur.HasFolder(sel) {
		return sel
	}
	return models.RootFolderID
}

// UpdateNote merges upd into the note with the given id and stamps its
// updatedAt. Unknown ids are ignored, and so is an update that would move
// the note into a folder that does not exist.
func (s *Store) UpdateNote(id string, upd models.NoteUpdate) {
	s.apply(ActionNoteUpdated, id, func(cur *models.State) *models.State {
		if upd.FolderID != nil && !cur.HasFolder(*upd.FolderID) {
			return nil
		}
		return s.updateNote(cur, id, func(n *models.Note) bool {
			mergeNote(n, upd)
			return true
		})
	})
}

// AddTag appends tag to the note's tags. Blank and duplicate tags are
// ignored.
func (s *Store) AddTag(id, tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	s.apply(ActionNoteUpdated, id, func(cur *models.State) *models.State {
		return s.updateNote(cur, id, func(n *models.Note) bool {
			if n.HasTag(tag) {
				return false
			}
			n.Tags = append(slices.Clone(n.Tags), tag)
			return true
		})
	})
}

func (s *Store) RemoveTag(id, tag string) {
	s.apply(ActionNoteUpdated, id, func(cur *models.State) *models.State {
		return s.updateNote(cur, id, func(n *models.Note) bool {
			if !n.HasTag(tag) {
				return false
			}
			n.Tags = slices.DeleteFunc(slices.Clone(n.Tags), func(t string) bool { return t == tag })
			return true
		})
	})
}

func (s *Store) TogglePin(id string) {
	s.apply(ActionNoteUpdated, id, func(cur *models.State) *models.State {
		return s.updateNote(cur, id, func(n *models.Note) bool {
			n.IsPinned = !n.IsPinned
			return true
		})
	})
}

// updateNote copies the notes slice, lets edit change the copy of the
// matching note and stamps it. It returns nil when the note is missing or
// edit reports no change.
func (s *Store) updateNote(cur *models.State, id string, edit func(n *models.Note) bool) *models.State {
	idx := cur.NoteIndex(id)
	if idx < 0 {
		return nil
	}

	note := cur.Notes[idx]
	if !edit(&note) {
		return nil
	}
	note.UpdatedAt = s.now()

	notes := slices.Clone(cur.Notes)
	notes[idx] = note

	next := cur.Clone()
	next.Notes = notes
	return next
}

func mergeNote(n *models.Note, upd models.NoteUpdate) {
	if upd.Title != nil {
		n.Title = *upd.Title
	}
	if upd.Content != nil {
		n.Content = *upd.Content
	}
	if upd.Tags != nil {
		n.Tags = dedupeTags(upd.Tags)
	}
	if upd.FolderID != nil {
		n.FolderID = *upd.FolderID
	}
	if upd.IsPinned != nil {
		n.IsPinned = *upd.IsPinned
	}
}

// dedupeTags keeps the first occurrence of every tag, in order.
func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// DeleteNote removes the note and clears the selection if it was selected.
func (s *Store) DeleteNote(id string) {
	s.apply(ActionNoteDeleted, id, func(cur *models.State) *models.State {
		idx := cur.NoteIndex(id)
		if idx < 0 {
			return nil
		}

		next := cur.Clone()
		next.Notes = slices.Delete(slices.Clone(cur.Notes), idx, idx+1)
		if next.SelectedNoteID == id {
			next.SelectedNoteID = ""
		}
		return next
	})
}

// SelectNote selects id without checking that it exists. An empty id clears
// the selection.
func (s *Store) SelectNote(id string) {
	s.apply(ActionNoteSelected, id, func(cur *models.State) *models.State {
		next := cur.Clone()
		next.SelectedNoteID = id
		return next
	})
}
