// Package audit keeps an activity log of every change applied to the notes
// store, in the activity_log table and as JSON lines in a file.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/amirk1998/notes-vault/internal/store"
)

type Logger struct {
	db         *sql.DB
	logFile    *os.File
	fileLog    zerolog.Logger
	log        zerolog.Logger
	asyncMode  bool
	eventQueue chan *Event
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewLogger creates an activity logger writing to logFilePath and, when db
// is not nil, to the activity_log table.
func NewLogger(db *sql.DB, logFilePath string, asyncMode bool, log zerolog.Logger) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	logger := &Logger{
		db:        db,
		logFile:   logFile,
		fileLog:   zerolog.New(logFile),
		log:       log.With().Str("component", "activity").Logger(),
		asyncMode: asyncMode,
		ctx:       ctx,
		cancel:    cancel,
	}

	if asyncMode {
		logger.eventQueue = make(chan *Event, 1000)
		logger.startAsyncLogger()
	}

	return logger, nil
}

// Observe subscribes the logger to s and returns the unsubscribe function.
func (al *Logger) Observe(s *store.Store) func() {
	return s.Subscribe(func(c store.Change) {
		if err := al.Log(EventFromChange(c)); err != nil {
			al.log.Warn().Err(err).Str("action", string(c.Action)).Msg("activity event dropped")
		}
	})
}

// EventFromChange maps a store change to an activity event.
func EventFromChange(c store.Change) *Event {
	action := string(c.Action)

	resource := "selection"
	switch {
	case c.Action == store.ActionNoteSelected || c.Action == store.ActionFolderSelected:
	case strings.HasPrefix(action, "NOTE_"):
		resource = "notes"
	case strings.HasPrefix(action, "FOLDER_"):
		resource = "folders"
	case c.Action == store.ActionStateRestored:
		resource = "store"
	}

	level := LevelInfo
	if c.Action == store.ActionNoteDeleted || c.Action == store.ActionFolderDeleted || c.Action == store.ActionStateRestored {
		level = LevelWarning
	}

	targetID := c.TargetID
	if targetID == "" && c.State != nil {
		switch c.Action {
		case store.ActionNoteCreated:
			targetID = c.State.SelectedNoteID
		case store.ActionFolderCreated:
			targetID = c.State.SelectedFolderID
		}
	}

	var metadata string
	if c.State != nil {
		metadata = fmt.Sprintf("notes=%d folders=%d", len(c.State.Notes), len(c.State.Folders))
	}

	return &Event{
		Level:    level,
		Action:   action,
		Resource: resource,
		TargetID: targetID,
		Metadata: metadata,
	}
}

// Log records an activity event
func (al *Logger) Log(event *Event) error {
	event.Timestamp = time.Now().UTC()

	if al.asyncMode {
		select {
		case al.eventQueue <- event:
			return nil
		default:
			return fmt.Errorf("activity log queue is full")
		}
	}

	return al.writeEvent(event)
}

// writeEvent writes event to database and file
func (al *Logger) writeEvent(event *Event) error {
	if al.db != nil {
		query := `
            INSERT INTO activity_log (
                timestamp, level, action, resource, target_id, metadata
            ) VALUES (?, ?, ?, ?, ?, ?)
        `

		result, err := al.db.Exec(query,
			event.Timestamp,
			event.Level,
			event.Action,
			event.Resource,
			event.TargetID,
			event.Metadata,
		)
		if err != nil {
			// Continue to write to file even if DB write fails
			al.log.Error().Err(err).Msg("failed to write activity event to database")
		} else {
			event.ID, _ = result.LastInsertId()
		}
	}

	al.fileLog.Log().
		Int64("id", event.ID).
		Time("timestamp", event.Timestamp).
		Str("level", string(event.Level)).
		Str("action", event.Action).
		Str("resource", event.Resource).
		Str("target_id", event.TargetID).
		Str("metadata", event.Metadata).
		Send()

	return nil
}

// startAsyncLogger starts async logging worker
func (al *Logger) startAsyncLogger() {
	al.wg.Add(1)
	go func() {
		defer al.wg.Done()
		for {
			select {
			case event := <-al.eventQueue:
				if err := al.writeEvent(event); err != nil {
					al.log.Error().Err(err).Msg("failed to write activity event")
				}
			case <-al.ctx.Done():
				// Drain remaining events
				for len(al.eventQueue) > 0 {
					event := <-al.eventQueue
					al.writeEvent(event)
				}
				return
			}
		}
	}()
}

// QueryLogs queries the activity table with filters, newest first
func (al *Logger) QueryLogs(filters QueryFilters) ([]*Event, error) {
	if al.db == nil {
		return nil, fmt.Errorf("activity log is file-only")
	}

	query := `
        SELECT id, timestamp, level, action, resource, target_id, metadata
        FROM activity_log
        WHERE 1=1
    `

	args := []interface{}{}

	if filters.StartTime != nil {
		query += " AND timestamp >= ?"
		args = append(args, filters.StartTime.UTC())
	}

	if filters.EndTime != nil {
		query += " AND timestamp <= ?"
		args = append(args, filters.EndTime.UTC())
	}

	if filters.Action != "" {
		query += " AND action = ?"
		args = append(args, filters.Action)
	}

	if filters.Resource != "" {
		query += " AND resource = ?"
		args = append(args, filters.Resource)
	}

	if filters.TargetID != "" {
		query += " AND target_id = ?"
		args = append(args, filters.TargetID)
	}

	query += " ORDER BY id DESC LIMIT ?"
	if filters.Limit <= 0 {
		filters.Limit = 100
	}
	args = append(args, filters.Limit)

	rows, err := al.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity log: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event := &Event{}
		var targetID, metadata sql.NullString
		err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&event.Level,
			&event.Action,
			&event.Resource,
			&targetID,
			&metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity event: %w", err)
		}
		event.TargetID = targetID.String
		event.Metadata = metadata.String
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return events, nil
}

// Close flushes queued events and closes the log file
func (al *Logger) Close() error {
	if al.asyncMode {
		al.cancel()
		al.wg.Wait()
	}

	return al.logFile.Close()
}
