package store

import (
	"slices"
	"strings"
	"time"

	"github.com/amirk1998/notes-vault/internal/models"
)

// FilteredNotes returns the notes of the current state that pass the folder,
// tag and search filters.
func (s *Store) FilteredNotes() []models.Note {
	return FilterNotes(s.State())
}

func (s *Store) AllTags() []string {
	return CollectTags(s.State())
}

func (s *Store) GroupedNotes(now time.Time) []Section {
	return GroupNotes(FilterNotes(s.State()), now)
}

func (s *Store) Note(id string) (models.Note, bool) {
	st := s.State()
	if idx := st.NoteIndex(id); idx >= 0 {
		return st.Notes[idx], true
	}
	return models.Note{}, false
}

func (s *Store) Folder(id string) (models.Folder, bool) {
	st := s.State()
	if idx := st.FolderIndex(id); idx >= 0 {
		return st.Folders[idx], true
	}
	return models.Folder{}, false
}

// FilterNotes applies, in order, the folder match, the tag filter and the
// case-insensitive search over title, content and tags. The result keeps the
// collection order.
func FilterNotes(st *models.State) []models.Note {
	query := strings.ToLower(st.SearchQuery)

	out := make([]models.Note, 0, len(st.Notes))
	for _, n := range st.Notes {
		if sel := st.SelectedFolderID; sel != "" && sel != models.AllFolderID && n.FolderID != sel {
			continue
		}
		if st.TagFilter != "" && !n.HasTag(st.TagFilter) {
			continue
		}
		if query != "" && !matchesQuery(n, query) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func matchesQuery(n models.Note, query string) bool {
	if strings.Contains(strings.ToLower(n.Title), query) ||
		strings.Contains(strings.ToLower(n.Content), query) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// CollectTags returns every tag used by any note, deduplicated and sorted.
func CollectTags(st *models.State) []string {
	set := make(map[string]struct{})
	for _, n := range st.Notes {
		for _, tag := range n.Tags {
			set[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Children returns the folders whose parent is parentID, in collection
// order. An empty parentID lists the root-level folders.
func Children(st *models.State, parentID string) []models.Folder {
	var out []models.Folder
	for _, f := range st.Folders {
		if f.ParentID == parentID {
			out = append(out, f)
		}
	}
	return out
}

// Ancestors returns the chain of folders above id, root-level folder first.
func Ancestors(st *models.State, id string) []models.Folder {
	idx := st.FolderIndex(id)
	if idx < 0 {
		return nil
	}

	var chain []models.Folder
	seen := map[string]bool{id: true}
	for parent := st.Folders[idx].ParentID; parent != "" && !seen[parent]; {
		seen[parent] = true
		pidx := st.FolderIndex(parent)
		if pidx < 0 {
			break
		}
		chain = append(chain, st.Folders[pidx])
		parent = st.Folders[pidx].ParentID
	}
	slices.Reverse(chain)
	return chain
}
