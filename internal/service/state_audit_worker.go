package service

import (
	"context"
	"sync"
	"time"

	"github.com/dafibh/osdesk/osdesk-backend/internal/domain"
	"github.com/dafibh/osdesk/osdesk-backend/internal/metrics"
	"github.com/rs/zerolog"
)

// StateAuditWorker is a background worker that periodically re-validates
// every stored desktop state and reports the ones that no longer decode.
type StateAuditWorker struct {
	desktopRepo domain.DesktopRepository
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	interval    time.Duration
	batchSize   int
	stopCh      chan struct{}
	doneCh      chan struct{}
	mu          sync.Mutex
	running     bool
}

// StateAuditWorkerConfig holds configuration for the state audit worker
type StateAuditWorkerConfig struct {
	Interval  time.Duration // How often to audit all desktops
	BatchSize int           // Desktops loaded per query
}

// AuditResult summarizes one pass over the stored desktops
type AuditResult struct {
	Checked int
	Corrupt []int32
}

// DefaultStateAuditWorkerConfig returns sensible defaults
func DefaultStateAuditWorkerConfig() StateAuditWorkerConfig {
	return StateAuditWorkerConfig{
		Interval:  6 * time.Hour,
		BatchSize: 200,
	}
}

// NewStateAuditWorker creates a new state audit worker
func NewStateAuditWorker(
	desktopRepo domain.DesktopRepository,
	m *metrics.Metrics,
	logger zerolog.Logger,
	config StateAuditWorkerConfig,
) *StateAuditWorker {
	defaults := DefaultStateAuditWorkerConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}

	return &StateAuditWorker{
		desktopRepo: desktopRepo,
		metrics:     m,
		logger:      logger.With().Str("component", "state_audit_worker").Logger(),
		interval:    config.Interval,
		batchSize:   config.BatchSize,
	}
}

// Start begins the background audit. A stopped worker can be started again.
func (w *StateAuditWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stop, done := w.stopCh, w.doneCh
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Int("batch_size", w.batchSize).
		Msg("Starting state audit worker")

	go w.run(ctx, stop, done)
}

// Stop gracefully stops the worker and waits for the current pass to end.
// Only the first of concurrent calls waits.
func (w *StateAuditWorker) Stop() {
	w.mu.Lock()
	stop, done := w.stopCh, w.doneCh
	w.stopCh = nil
	w.mu.Unlock()
	if stop == nil {
		return
	}

	w.logger.Info().Msg("Stopping state audit worker")
	close(stop)
	<-done
	w.logger.Info().Msg("State audit worker stopped")
}

func (w *StateAuditWorker) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	// Run immediately on startup
	w.audit(ctx, stop)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			w.audit(ctx, stop)
		}
	}
}

func (w *StateAuditWorker) audit(ctx context.Context, stop <-chan struct{}) {
	startTime := time.Now()

	result, err := w.auditAll(ctx, stop)
	if err != nil {
		w.logger.Error().Err(err).Int("checked", result.Checked).Msg("State audit aborted")
		return
	}

	// A pass cut short by Stop is not reported
	select {
	case <-stop:
		return
	default:
	}

	w.metrics.SetCorruptStates(len(result.Corrupt))
	w.logger.Info().
		Int("checked", result.Checked).
		Int("corrupt", len(result.Corrupt)).
		Dur("elapsed", time.Since(startTime)).
		Msg("Completed state audit")
}

// AuditAll pages through every desktop and decodes its stored state.
// A partial result is returned alongside any error that ends the pass.
func (w *StateAuditWorker) AuditAll(ctx context.Context) (AuditResult, error) {
	return w.auditAll(ctx, nil)
}

func (w *StateAuditWorker) auditAll(ctx context.Context, stop <-chan struct{}) (AuditResult, error) {
	var (
		result  AuditResult
		afterID int32
	)

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-stop:
			return result, nil
		default:
		}

		desktops, err := w.desktopRepo.ListAfter(ctx, afterID, w.batchSize)
		if err != nil {
			return result, err
		}

		for _, d := range desktops {
			result.Checked++
			if _, err := domain.DecodeState(d.RawState); err != nil {
				result.Corrupt = append(result.Corrupt, d.ID)
				w.logger.Warn().
					Err(err).
					Int32("desktop_id", d.ID).
					Str("user_id", d.UserID.String()).
					Msg("Stored desktop state failed validation")
			}
			afterID = d.ID
		}

		if len(desktops) < w.batchSize {
			return result, nil
		}
	}
}

// IsRunning returns whether the worker is currently running
func (w *StateAuditWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
