package models

import (
	"time"
)

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	FolderID  string    `json:"folderId,omitempty"`
	IsPinned  bool      `json:"isPinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasTag reports whether the note carries tag exactly.
func (n Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NoteUpdate holds the fields of a partial note update. Nil fields are left
// unchanged; a non-nil empty Tags slice clears the tags.
type NoteUpdate struct {
	Title    *string
	Content  *string
	Tags     []string
	FolderID *string
	IsPinned *bool
}

// IsEmpty reports whether the update sets no field at all.
func (u NoteUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.Tags == nil && u.FolderID == nil && u.IsPinned == nil
}
