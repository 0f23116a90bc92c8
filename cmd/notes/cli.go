package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/amirk1998/notes-vault/internal/audit"
	"github.com/amirk1998/notes-vault/internal/editor"
	"github.com/amirk1998/notes-vault/internal/export"
	"github.com/amirk1998/notes-vault/internal/models"
	"github.com/amirk1998/notes-vault/internal/persist"
	"github.com/amirk1998/notes-vault/internal/store"
)

const timeFormat = "2006-01-02 15:04:05"

// runCLI runs the interactive command-line interface
func (app *Application) runCLI(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			app.showMainMenu()

			fmt.Print("\nSelect option: ")
			if !scanner.Scan() {
				return
			}

			choice := strings.TrimSpace(scanner.Text())
			fmt.Println()

			if !app.handleMainChoice(ctx, choice, scanner) {
				fmt.Println("Goodbye!")
				return
			}
		}
	}
}

// showMainMenu displays main menu
func (app *Application) showMainMenu() {
	st := app.store.State()
	folder := "All Notes"
	if f, ok := app.store.Folder(st.SelectedFolderID); ok {
		folder = f.Name
	}

	fmt.Printf("\n--- Main Menu (Folder: %s", folder)
	if st.SearchQuery != "" {
		fmt.Printf(" | Search: %q", st.SearchQuery)
	}
	if st.TagFilter != "" {
		fmt.Printf(" | Tag: #%s", st.TagFilter)
	}
	fmt.Println(") ---")
	fmt.Println("1. New Note")
	fmt.Println("2. List Notes")
	fmt.Println("3. View Note")
	fmt.Println("4. Edit Note")
	fmt.Println("5. Manage Tags")
	fmt.Println("6. Pin / Unpin Note")
	fmt.Println("7. Move Note to Folder")
	fmt.Println("8. Delete Note")
	fmt.Println("9. Folders")
	fmt.Println("10. Search")
	fmt.Println("11. Filter by Tag")
	fmt.Println("12. Toggle Folder Tree")
	fmt.Println("13. Backups")
	fmt.Println("14. Export to Markdown")
	fmt.Println("15. View Activity Log")
	fmt.Println("16. Storage Info")
	fmt.Println("0. Exit")
}

// handleMainChoice handles main menu choices. It returns false on exit.
func (app *Application) handleMainChoice(ctx context.Context, choice string, scanner *bufio.Scanner) bool {
	switch choice {
	case "1":
		app.handleCreateNote(scanner)
	case "2":
		app.handleListNotes()
	case "3":
		app.handleViewNote(scanner)
	case "4":
		app.handleEditNote(scanner)
	case "5":
		app.handleTags(scanner)
	case "6":
		app.handleTogglePin(scanner)
	case "7":
		app.handleMoveNote(scanner)
	case "8":
		app.handleDeleteNote(scanner)
	case "9":
		app.handleFolders(scanner)
	case "10":
		app.handleSearch(scanner)
	case "11":
		app.handleTagFilter(scanner)
	case "12":
		st := app.store.State()
		app.store.SetSidebarCollapsed(!st.SidebarCollapsed)
		fmt.Println("✓ Folder tree toggled")
	case "13":
		app.handleBackups(scanner)
	case "14":
		app.handleExport()
	case "15":
		app.handleViewActivityLog(scanner)
	case "16":
		app.handleStorageInfo(ctx)
	case "0":
		return false
	default:
		fmt.Println("Invalid option")
	}
	return true
}

func prompt(scanner *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

// pickNote resolves a number from the last listing or a note id.
func (app *Application) pickNote(scanner *bufio.Scanner) (models.Note, bool) {
	input := prompt(scanner, "Note # or ID: ")

	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(app.listed) {
			fmt.Println("No such note in the last listing")
			return models.Note{}, false
		}
		input = app.listed[n-1].ID
	}

	note, ok := app.store.Note(input)
	if !ok {
		fmt.Println("Note not found")
	}
	return note, ok
}

// pickFolder resolves a folder by id or exact name. Empty input yields "".
func (app *Application) pickFolder(scanner *bufio.Scanner, label string) (string, bool) {
	input := prompt(scanner, label)
	if input == "" {
		return "", true
	}

	st := app.store.State()
	for _, f := range st.Folders {
		if f.ID == input || strings.EqualFold(f.Name, input) {
			return f.ID, true
		}
	}
	fmt.Println("Folder not found")
	return "", false
}

// handleCreateNote handles note creation
func (app *Application) handleCreateNote(scanner *bufio.Scanner) {
	fmt.Println("=== Create New Note ===")

	id := app.store.CreateNote("")
	fmt.Printf("✓ Note created (ID: %s)\n", id)

	app.editNote(id, scanner)
}

// handleEditNote handles editing a note's title and content
func (app *Application) handleEditNote(scanner *bufio.Scanner) {
	note, ok := app.pickNote(scanner)
	if !ok {
		return
	}
	app.store.SelectNote(note.ID)
	app.editNote(note.ID, scanner)
}

// editNote reads a title and content lines and feeds them through a
// debounced edit session.
func (app *Application) editNote(id string, scanner *bufio.Scanner) {
	sess := editor.NewSession(app.store, id, app.config.EditDebounce)
	app.trackSession(sess)
	defer func() {
		sess.Close()
		app.trackSession(nil)
	}()

	title := prompt(scanner, "Title (press Enter to keep): ")
	if title != "" {
		title = app.validator.SanitizeString(title)
		if err := app.validator.ValidateNoteTitle(title); err != nil {
			fmt.Printf("Invalid title: %v\n", err)
			return
		}
		sess.SetTitle(title)
	}

	fmt.Println("Content (end with a single '.' line, empty first line keeps current):")
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "." {
			break
		}
		if len(lines) == 0 && line == "" {
			break
		}
		lines = append(lines, line)

		content := strings.Join(lines, "\n")
		if err := app.validator.ValidateNoteContent(content); err != nil {
			fmt.Printf("Content rejected: %v\n", err)
			sess.Discard()
			return
		}
		sess.SetContent(content)
	}

	fmt.Println("✓ Note saved")
}

// handleListNotes prints the filtered notes grouped by date
func (app *Application) handleListNotes() {
	st := app.store.State()
	if !st.SidebarCollapsed {
		app.printFolderTree(st)
		fmt.Println()
	}

	sections := app.store.GroupedNotes(time.Now())
	app.listed = app.listed[:0]

	if len(sections) == 0 {
		fmt.Println("No notes found")
		return
	}

	for _, section := range sections {
		fmt.Printf("=== %s ===\n", section.Label)
		for _, note := range section.Notes {
			app.listed = append(app.listed, note)
			title := note.Title
			if title == "" {
				title = "Untitled"
			}
			pin := ""
			if note.IsPinned {
				pin = " 📌"
			}
			fmt.Printf("%3d. %s%s  (%s)\n", len(app.listed), title, pin, note.UpdatedAt.Local().Format(timeFormat))

			// Show truncated content
			content := strings.ReplaceAll(note.Content, "\n", " ")
			if len(content) > 80 {
				content = content[:80] + "..."
			}
			if content != "" {
				fmt.Printf("     %s\n", content)
			}
		}
	}
}

// handleViewNote handles viewing a specific note
func (app *Application) handleViewNote(scanner *bufio.Scanner) {
	note, ok := app.pickNote(scanner)
	if !ok {
		return
	}
	app.store.SelectNote(note.ID)

	st := app.store.State()
	path := []string{}
	if idx := st.FolderIndex(note.FolderID); idx >= 0 {
		for _, f := range store.Ancestors(st, note.FolderID) {
			path = append(path, f.Name)
		}
		path = append(path, st.Folders[idx].Name)
	}

	fmt.Println("\n=== Note Details ===")
	fmt.Printf("ID: %s\n", note.ID)
	fmt.Printf("Title: %s\n", note.Title)
	fmt.Printf("Folder: %s\n", strings.Join(path, " / "))
	fmt.Printf("Tags: %s\n", formatTags(note.Tags))
	fmt.Printf("Pinned: %v\n", note.IsPinned)
	fmt.Printf("Created: %s\n", note.CreatedAt.Local().Format(timeFormat))
	fmt.Printf("Updated: %s\n", note.UpdatedAt.Local().Format(timeFormat))
	fmt.Printf("\nContent:\n%s\n", note.Content)
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = "#" + t
	}
	return strings.Join(out, " ")
}

// handleTags adds or removes a tag on a note
func (app *Application) handleTags(scanner *bufio.Scanner) {
	note, ok := app.pickNote(scanner)
	if !ok {
		return
	}

	fmt.Printf("Current tags: %s\n", formatTags(note.Tags))
	action := strings.ToLower(prompt(scanner, "Add or remove? (a/r): "))
	tag := app.validator.SanitizeString(prompt(scanner, "Tag: "))

	switch action {
	case "a":
		if err := app.validator.ValidateTag(tag); err != nil {
			fmt.Printf("Invalid tag: %v\n", err)
			return
		}
		app.store.AddTag(note.ID, tag)
	case "r":
		app.store.RemoveTag(note.ID, tag)
	default:
		fmt.Println("Invalid option")
		return
	}

	updated, _ := app.store.Note(note.ID)
	fmt.Printf("✓ Tags: %s\n", formatTags(updated.Tags))
}

// handleTogglePin handles pinning and unpinning a note
func (app *Application) handleTogglePin(scanner *bufio.Scanner) {
	note, ok := app.pickNote(scanner)
	if !ok {
		return
	}

	app.store.TogglePin(note.ID)
	if note.IsPinned {
		fmt.Println("✓ Note unpinned")
	} else {
		fmt.Println("✓ Note pinned")
	}
}

// handleMoveNote moves a note into another folder
func (app *Application) handleMoveNote(scanner *bufio.Scanner) {
	note, ok := app.pickNote(scanner)
	if !ok {
		return
	}

	folderID, ok := app.pickFolder(scanner, "Target folder (name or ID): ")
	if !ok || folderID == "" {
		return
	}

	app.store.UpdateNote(note.ID, models.NoteUpdate{FolderID: &folderID})
	fmt.Println("✓ Note moved")
}

// handleDeleteNote handles deleting a note
func (app *Application) handleDeleteNote(scanner *bufio.Scanner) {
	note, ok := app.pickNote(scanner)
	if !ok {
		return
	}

	confirm := strings.ToLower(prompt(scanner, "Are you sure? (yes/no): "))
	if confirm != "yes" {
		fmt.Println("Cancelled")
		return
	}

	app.store.DeleteNote(note.ID)
	fmt.Println("✓ Note deleted successfully!")
}

// printFolderTree prints the folder forest, hiding children of collapsed
// folders.
func (app *Application) printFolderTree(st *models.State) {
	fmt.Println("=== Folders ===")
	marker := " "
	if st.SelectedFolderID == models.AllFolderID {
		marker = "*"
	}
	fmt.Printf("%s 🗂  All Notes\n", marker)

	var walk func(parentID string, depth int)
	walk = func(parentID string, depth int) {
		for _, f := range store.Children(st, parentID) {
			marker := " "
			if f.ID == st.SelectedFolderID {
				marker = "*"
			}
			arrow := "▸"
			if f.IsExpanded {
				arrow = "▾"
			}
			if len(store.Children(st, f.ID)) == 0 {
				arrow = " "
			}
			fmt.Printf("%s %s%s %s %s  [%s]\n", marker, strings.Repeat("  ", depth), arrow, f.Icon, f.Name, f.ID)
			if f.IsExpanded {
				walk(f.ID, depth+1)
			}
		}
	}
	walk("", 0)
}

// handleFolders shows the folder submenu
func (app *Application) handleFolders(scanner *bufio.Scanner) {
	app.printFolderTree(app.store.State())

	fmt.Println("\n--- Folders ---")
	fmt.Println("1. Select Folder")
	fmt.Println("2. Show All Notes")
	fmt.Println("3. New Folder")
	fmt.Println("4. Rename Folder")
	fmt.Println("5. Move Folder")
	fmt.Println("6. Expand / Collapse Folder")
	fmt.Println("7. Delete Folder")

	switch prompt(scanner, "\nSelect option: ") {
	case "1":
		if id, ok := app.pickFolder(scanner, "Folder (name or ID): "); ok && id != "" {
			app.store.SelectFolder(id)
			fmt.Println("✓ Folder selected")
		}
	case "2":
		app.store.SelectFolder(models.AllFolderID)
		fmt.Println("✓ Showing all notes")
	case "3":
		name := app.validator.SanitizeString(prompt(scanner, "Folder name: "))
		if err := app.validator.ValidateFolderName(name); err != nil {
			fmt.Printf("Invalid name: %v\n", err)
			return
		}
		parentID, ok := app.pickFolder(scanner, "Parent folder (press Enter for top level): ")
		if !ok {
			return
		}
		id := app.store.CreateFolder(name, parentID)
		fmt.Printf("✓ Folder created (ID: %s)\n", id)
	case "4":
		id, ok := app.pickFolder(scanner, "Folder (name or ID): ")
		if !ok || id == "" {
			return
		}
		if id == models.RootFolderID {
			fmt.Println("The root folder cannot be renamed")
			return
		}
		name := app.validator.SanitizeString(prompt(scanner, "New name: "))
		if err := app.validator.ValidateFolderName(name); err != nil {
			fmt.Printf("Invalid name: %v\n", err)
			return
		}
		app.store.RenameFolder(id, name)
		fmt.Println("✓ Folder renamed")
	case "5":
		id, ok := app.pickFolder(scanner, "Folder to move (name or ID): ")
		if !ok || id == "" {
			return
		}
		parentID, ok := app.pickFolder(scanner, "New parent (press Enter for top level): ")
		if !ok {
			return
		}
		before := app.store.State()
		app.store.MoveFolder(id, parentID)
		if app.store.State() == before {
			fmt.Println("Move rejected: a folder cannot be moved into itself or its descendants")
			return
		}
		fmt.Println("✓ Folder moved")
	case "6":
		if id, ok := app.pickFolder(scanner, "Folder (name or ID): "); ok && id != "" {
			app.store.ToggleFolder(id)
			fmt.Println("✓ Folder toggled")
		}
	case "7":
		id, ok := app.pickFolder(scanner, "Folder (name or ID): ")
		if !ok || id == "" {
			return
		}
		if id == models.RootFolderID {
			fmt.Println("The root folder cannot be deleted")
			return
		}
		if strings.ToLower(prompt(scanner, "Notes move to Notes, subfolders move up. Continue? (yes/no): ")) != "yes" {
			fmt.Println("Cancelled")
			return
		}
		app.store.DeleteFolder(id)
		fmt.Println("✓ Folder deleted")
	default:
		fmt.Println("Invalid option")
	}
}

// handleSearch sets or clears the search query
func (app *Application) handleSearch(scanner *bufio.Scanner) {
	query := prompt(scanner, "Search (press Enter to clear): ")
	if err := app.validator.ValidateSearchQuery(query); err != nil {
		fmt.Printf("Invalid query: %v\n", err)
		return
	}

	app.store.SetSearchQuery(query)
	app.handleListNotes()
}

// handleTagFilter sets or clears the tag filter
func (app *Application) handleTagFilter(scanner *bufio.Scanner) {
	tags := app.store.AllTags()
	if len(tags) == 0 {
		fmt.Println("No tags yet")
	} else {
		fmt.Printf("Tags: %s\n", formatTags(tags))
	}

	tag := strings.TrimPrefix(prompt(scanner, "Tag (press Enter to clear): "), "#")
	app.store.SetTagFilter(tag)
	app.handleListNotes()
}

// handleBackups shows the backup submenu
func (app *Application) handleBackups(scanner *bufio.Scanner) {
	if app.backupMgr == nil {
		fmt.Println("Backups are disabled: set BACKUP_PASSPHRASE to enable them")
		return
	}

	fmt.Println("--- Backups ---")
	fmt.Println("1. Create Backup")
	fmt.Println("2. List Backups")
	fmt.Println("3. Restore Backup")

	switch prompt(scanner, "\nSelect option: ") {
	case "1":
		app.handleCreateBackup()
	case "2":
		app.listBackups()
	case "3":
		app.handleRestoreBackup(scanner)
	default:
		fmt.Println("Invalid option")
	}
}

// handleCreateBackup handles manual backup creation
func (app *Application) handleCreateBackup() {
	fmt.Println("Creating encrypted backup...")

	doc, err := app.snapshot()
	if err != nil {
		fmt.Printf("Backup failed: %v\n", err)
		return
	}

	backupPath, err := app.backupMgr.CreateBackup(doc)
	if err != nil {
		fmt.Printf("Backup failed: %v\n", err)
		return
	}

	fmt.Printf("✓ Backup created successfully: %s\n", backupPath)

	// Verify backup
	if err := app.backupMgr.VerifyBackup(backupPath); err != nil {
		fmt.Printf("Warning: Backup verification failed: %v\n", err)
		return
	}

	fmt.Println("✓ Backup verified successfully")
}

func (app *Application) listBackups() []string {
	paths, err := app.backupMgr.ListBackups()
	if err != nil {
		fmt.Printf("Failed to list backups: %v\n", err)
		return nil
	}
	if len(paths) == 0 {
		fmt.Println("No backups found")
		return nil
	}
	for i, p := range paths {
		fmt.Printf("%3d. %s\n", i+1, filepath.Base(p))
	}
	return paths
}

// handleRestoreBackup replaces the current state with a backup
func (app *Application) handleRestoreBackup(scanner *bufio.Scanner) {
	paths := app.listBackups()
	if len(paths) == 0 {
		return
	}

	n, err := strconv.Atoi(prompt(scanner, "Backup #: "))
	if err != nil || n < 1 || n > len(paths) {
		fmt.Println("Invalid backup number")
		return
	}

	if strings.ToLower(prompt(scanner, "Current notes will be replaced. Continue? (yes/no): ")) != "yes" {
		fmt.Println("Cancelled")
		return
	}

	doc, err := app.backupMgr.RestoreBackup(paths[n-1])
	if err != nil {
		fmt.Printf("Restore failed: %v\n", err)
		return
	}

	state, err := persist.Decode(doc)
	if err != nil {
		fmt.Printf("Restore failed: %v\n", err)
		return
	}

	app.store.Restore(state)
	app.writer.Flush()
	app.listed = nil
	fmt.Printf("✓ Restored %d notes and %d folders\n", len(state.Notes), len(state.Folders))
}

// handleExport writes all notes as markdown files
func (app *Application) handleExport() {
	count, err := export.ExportMarkdown(app.config.ExportDir, app.store.State())
	if err != nil {
		fmt.Printf("Export failed after %d notes: %v\n", count, err)
		return
	}

	fmt.Printf("✓ Exported %d notes to %s\n", count, app.config.ExportDir)
}

// handleViewActivityLog handles viewing the activity log
func (app *Application) handleViewActivityLog(scanner *bufio.Scanner) {
	fmt.Println("=== Recent Activity ===")

	filters := audit.QueryFilters{
		Resource: prompt(scanner, "Resource (notes/folders/selection/store, Enter for all): "),
		Limit:    20,
	}

	events, err := app.activity.QueryLogs(filters)
	if err != nil {
		fmt.Printf("Failed to query activity log: %v\n", err)
		fmt.Printf("Activity is still written to %s\n", app.config.ActivityLogPath)
		return
	}

	if len(events) == 0 {
		fmt.Println("No activity found")
		return
	}

	for _, event := range events {
		fmt.Printf("[%s] %-7s %-18s %s\n",
			event.Timestamp.Local().Format(timeFormat),
			event.Level,
			event.Action,
			event.TargetID,
		)
	}
}

// handleStorageInfo prints where and how the snapshot is stored
func (app *Application) handleStorageInfo(ctx context.Context) {
	st := app.store.State()
	app.writer.Flush()

	fmt.Println("=== Storage ===")
	fmt.Printf("Backend: %s\n", app.config.StorageBackend)
	fmt.Printf("Record: %s\n", app.config.StorageName)
	fmt.Printf("Notes: %d | Folders: %d | Tags: %d\n", len(st.Notes), len(st.Folders), len(store.CollectTags(st)))

	if app.snapshots == nil {
		fmt.Printf("File: %s\n", app.config.SnapshotFile())
		return
	}

	fmt.Printf("Database: %s\n", app.config.DBPath)
	revision, err := app.snapshots.Revision(ctx, app.config.StorageName)
	if err != nil {
		fmt.Printf("Revision: unavailable (%v)\n", err)
		return
	}
	fmt.Printf("Revision: %d\n", revision)
}
