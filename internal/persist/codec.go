// Package persist saves and loads store snapshots as a single named JSON
// document.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/amirk1998/notes-vault/internal/models"
	apperrors "github.com/amirk1998/notes-vault/pkg/errors"
)

// DefaultRecordName is the key the snapshot is stored under.
const DefaultRecordName = "notes-storage"

// Repository is the storage medium for snapshot documents.
type Repository interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, doc []byte) error
}

// Encode serializes a snapshot. Dates are written as RFC 3339 strings with
// nanosecond precision.
func Encode(state *models.State) ([]byte, error) {
	doc, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return doc, nil
}

func Decode(doc []byte) (*models.State, error) {
	state := &models.State{}
	if err := json.Unmarshal(doc, state); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return state, nil
}

// Load reads the named snapshot. A missing record yields nil and no error so
// the caller starts from a fresh state. An unreadable or corrupt record is
// logged and also yields nil: the store then runs from memory.
func Load(ctx context.Context, repo Repository, name string, log zerolog.Logger) *models.State {
	doc, err := repo.Load(ctx, name)
	if errors.Is(err, apperrors.ErrRecordNotFound) {
		log.Info().Str("record", name).Msg("no saved snapshot, starting fresh")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Str("record", name).Msg("failed to load snapshot")
		return nil
	}

	state, err := Decode(doc)
	if err != nil {
		log.Error().Err(err).Str("record", name).Msg("discarding unreadable snapshot")
		return nil
	}

	log.Info().Str("record", name).Int("notes", len(state.Notes)).Int("folders", len(state.Folders)).Msg("snapshot loaded")
	return state
}
