package models

const (
	// RootFolderID is the permanent root folder. It cannot be deleted,
	// renamed or moved.
	RootFolderID = "notes"

	// AllFolderID selects notes from every folder when used as the selected
	// folder. No folder carries this id.
	AllFolderID = "all"

	RootFolderName    = "Notes"
	DefaultFolderIcon = "📁"
)

// Folder is a node of the folder forest. An empty ParentID places the folder
// at root level.
type Folder struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	IsExpanded bool   `json:"isExpanded"`
	ParentID   string `json:"parentId,omitempty"`
}

func RootFolder() Folder {
	return Folder{
		ID:   RootFolderID,
		Name: RootFolderName,
		Icon: DefaultFolderIcon,
	}
}
