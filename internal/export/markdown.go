// Package export writes notes out as markdown files with YAML front matter,
// laid out in directories that mirror the folder tree.
package export

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amirk1998/notes-vault/internal/models"
	"github.com/amirk1998/notes-vault/internal/store"
	"github.com/amirk1998/notes-vault/pkg/errors"
)

const delimiter = "---\n"

type frontmatter struct {
	ID        string    `yaml:"id"`
	Title     string    `yaml:"title"`
	Tags      []string  `yaml:"tags"`
	Pinned    bool      `yaml:"pinned,omitempty"`
	Folder    string    `yaml:"folder,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// ExportMarkdown writes every note of st under dir and returns the number
// of files written.
func ExportMarkdown(dir string, st *models.State) (int, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrExportFailed, err)
	}

	for i, note := range st.Notes {
		path := filepath.Join(dir, NotePath(st, note))
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return i, fmt.Errorf("%w: %v", errors.ErrExportFailed, err)
		}
		if err := WriteNote(path, note); err != nil {
			return i, err
		}
	}

	return len(st.Notes), nil
}

// NotePath is the note's file path relative to the export root: one
// directory per folder from the top of the tree down to the note's folder.
func NotePath(st *models.State, note models.Note) string {
	var parts []string
	if idx := st.FolderIndex(note.FolderID); idx >= 0 {
		for _, f := range store.Ancestors(st, note.FolderID) {
			parts = append(parts, dirName(f))
		}
		parts = append(parts, dirName(st.Folders[idx]))
	}
	parts = append(parts, note.ID+".md")
	return filepath.Join(parts...)
}

func dirName(f models.Folder) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '-'
		}
		return r
	}, strings.TrimSpace(f.Name))

	name = strings.TrimLeft(name, ".")
	if name == "" {
		return f.ID
	}
	return name
}

// WriteNote writes note to path as front matter followed by its content.
func WriteNote(path string, note models.Note) error {
	var buf bytes.Buffer

	buf.WriteString(delimiter)

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(frontmatter{
		ID:        note.ID,
		Title:     note.Title,
		Tags:      note.Tags,
		Pinned:    note.IsPinned,
		Folder:    note.FolderID,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("%w: failed to encode frontmatter: %v", errors.ErrExportFailed, err)
	}
	encoder.Close()

	buf.WriteString(delimiter)
	buf.WriteString("\n")
	buf.WriteString(note.Content)

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrExportFailed, err)
	}
	return nil
}

// ReadNote parses a file written by WriteNote.
func ReadNote(path string) (models.Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Note{}, err
	}

	rest, ok := bytes.CutPrefix(data, []byte(delimiter))
	if !ok {
		return models.Note{}, errors.ErrInvalidFrontmatter
	}
	head, body, ok := bytes.Cut(rest, []byte("\n"+delimiter))
	if !ok {
		return models.Note{}, errors.ErrInvalidFrontmatter
	}

	var fm frontmatter
	if err := yaml.Unmarshal(head, &fm); err != nil {
		return models.Note{}, fmt.Errorf("%w: %v", errors.ErrInvalidFrontmatter, err)
	}
	if fm.ID == "" {
		return models.Note{}, fmt.Errorf("%w: missing id", errors.ErrInvalidFrontmatter)
	}

	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}

	return models.Note{
		ID:        fm.ID,
		Title:     fm.Title,
		Content:   string(bytes.TrimPrefix(body, []byte("\n"))),
		Tags:      tags,
		FolderID:  fm.Folder,
		IsPinned:  fm.Pinned,
		CreatedAt: fm.CreatedAt.UTC(),
		UpdatedAt: fm.UpdatedAt.UTC(),
	}, nil
}

// ListNotes reads every markdown note under dir, skipping files that do not
// parse.
func ListNotes(dir string) ([]models.Note, error) {
	var notes []models.Note
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		note, err := ReadNote(path)
		if err != nil {
			return nil // Skip invalid notes
		}
		notes = append(notes, note)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notes, nil
}
