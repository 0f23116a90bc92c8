package persist

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/amirk1998/notes-vault/internal/models"
)

const saveTimeout = 10 * time.Second

// Writer persists snapshots in the background. Save never blocks on I/O:
// it replaces the pending snapshot and wakes the worker, so a burst of
// mutations collapses into one write of the newest state. Writes are spaced
// by a token bucket. Failures are logged and dropped.
type Writer struct {
	repo    Repository
	name    string
	limiter *rate.Limiter
	log     zerolog.Logger

	mu      sync.Mutex
	pending *models.State

	// writeMu orders writes so an older snapshot never lands after a newer one.
	writeMu sync.Mutex

	wake   chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type WriterConfig struct {
	Name string
	// WritesPerSecond <= 0 disables throttling.
	WritesPerSecond float64
	Burst           int
}

// NewWriter starts the background worker. Close must be called to flush the
// last snapshot and stop it.
func NewWriter(repo Repository, cfg WriterConfig, log zerolog.Logger) *Writer {
	if cfg.Name == "" {
		cfg.Name = DefaultRecordName
	}

	limit := rate.Inf
	if cfg.WritesPerSecond > 0 {
		limit = rate.Limit(cfg.WritesPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Writer{
		repo:    repo,
		name:    cfg.Name,
		limiter: rate.NewLimiter(limit, burst),
		log:     log.With().Str("component", "persist").Str("record", cfg.Name).Logger(),
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}

	w.wg.Add(1)
	go w.run()

	return w
}

// Save schedules state for writing.
func (w *Writer) Save(state *models.State) {
	w.mu.Lock()
	w.pending = state
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush writes the pending snapshot, if any, before returning.
func (w *Writer) Flush() {
	w.writePending()
}

// Close stops the worker and writes whatever is still pending.
func (w *Writer) Close() error {
	w.cancel()
	w.wg.Wait()
	w.writePending()
	return nil
}

func (w *Writer) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.wake:
			if err := w.limiter.Wait(w.ctx); err != nil {
				// Close drains the pending snapshot.
				return
			}
			w.writePending()
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Writer) writePending() {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	state := w.pending
	w.pending = nil
	w.mu.Unlock()

	if state == nil {
		return
	}

	doc, err := Encode(state)
	if err != nil {
		w.log.Error().Err(err).Msg("snapshot not saved")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	start := time.Now()
	if err := w.repo.Save(ctx, w.name, doc); err != nil {
		w.log.Warn().Err(err).Msg("snapshot not saved, in-memory state remains authoritative")
		return
	}
	w.log.Debug().Int("bytes", len(doc)).Dur("took", time.Since(start)).Msg("snapshot saved")
}
