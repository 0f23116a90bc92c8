package store

import (
	"github.com/amirk1998/notes-vault/internal/models"
)

func (s *Store) SetSearchQuery(query string) {
	s.apply(ActionSearchChanged, "", func(cur *models.State) *models.State {
		next := cur.Clone()
		next.SearchQuery = query
		return next
	})
}

// SetTagFilter restricts the note list to notes carrying tag. An empty tag
// removes the filter.
func (s *Store) SetTagFilter(tag string) {
	s.apply(ActionTagFilterChanged, tag, func(cur *models.State) *models.State {
		next := cur.Clone()
		next.TagFilter = tag
		return next
	})
}

func (s *Store) SetSidebarCollapsed(collapsed bool) {
	s.apply(ActionSidebarToggled, "", func(cur *models.State) *models.State {
		next := cur.Clone()
		next.SidebarCollapsed = collapsed
		return next
	})
}
