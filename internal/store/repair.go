package store

import (
	"slices"

	"github.com/amirk1998/notes-vault/internal/models"
)

// Repair returns a state that satisfies the store invariants, built from a
// loaded or restored snapshot. The root folder is re-created when missing,
// notes pointing at unknown folders move to the root folder, parents that do
// not exist become root level and a parent chain that loops is cut where the
// loop closes. Nil collections become empty ones. st is not modified.
func Repair(st *models.State) *models.State {
	next := st.Clone()

	folders := slices.Clone(st.Folders)
	rootIdx := slices.IndexFunc(folders, func(f models.Folder) bool { return f.ID == models.RootFolderID })
	if rootIdx < 0 {
		folders = append([]models.Folder{models.RootFolder()}, folders...)
	} else {
		folders[rootIdx].ParentID = ""
		if folders[rootIdx].Name == "" {
			folders[rootIdx].Name = models.RootFolderName
		}
	}

	known := make(map[string]int, len(folders))
	for i, f := range folders {
		known[f.ID] = i
	}
	for i := range folders {
		if _, ok := known[folders[i].ParentID]; !ok {
			folders[i].ParentID = ""
		}
	}
	for i := range folders {
		cutCycle(folders, known, i)
	}

	notes := make([]models.Note, len(st.Notes))
	for i, n := range st.Notes {
		if _, ok := known[n.FolderID]; !ok {
			n.FolderID = models.RootFolderID
		}
		if n.Tags == nil {
			n.Tags = []string{}
		}
		notes[i] = n
	}

	next.Folders = folders
	next.Notes = notes
	return next
}

// cutCycle follows parents from folders[start] and, if the walk returns to a
// folder it has already visited, detaches that folder to root level.
func cutCycle(folders []models.Folder, known map[string]int, start int) {
	visited := map[int]bool{}
	for i := start; ; {
		visited[i] = true
		parent := folders[i].ParentID
		if parent == "" {
			return
		}
		p := known[parent]
		if visited[p] {
			folders[i].ParentID = ""
			return
		}
		i = p
	}
}
