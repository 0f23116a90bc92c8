package models

// State is one immutable snapshot of the notes store. A State is never
// modified after it is published; every mutation builds a new one and shares
// the collections it did not touch.
type State struct {
	Notes            []Note   `json:"notes"`
	Folders          []Folder `json:"folders"`
	SelectedNoteID   string   `json:"selectedNoteId"`
	SelectedFolderID string   `json:"selectedFolderId"`
	SearchQuery      string   `json:"searchQuery"`
	TagFilter        string   `json:"tagFilter"`
	SidebarCollapsed bool     `json:"sidebarCollapsed"`
}

// NewState returns the state of a fresh installation: no notes and the root
// folder selected.
func NewState() *State {
	return &State{
		Notes:            []Note{},
		Folders:          []Folder{RootFolder()},
		SelectedFolderID: RootFolderID,
	}
}

func (s *State) NoteIndex(id string) int {
	for i := range s.Notes {
		if s.Notes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) FolderIndex(id string) int {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) HasFolder(id string) bool {
	return s.FolderIndex(id) >= 0
}

// Clone returns a shallow copy of s. The collections are shared with s.
func (s *State) Clone() *State {
	next := *s
	return &next
}
