// Package syncengine drains the offline store's queue against the server
// whenever connectivity allows. At most one drain runs at a time; operations
// are retried with a fixed budget and dropped once it is exhausted.
package syncengine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/offline"
)

type Config struct {
	BatchSize   int           // operations per batch, default 10
	Interval    time.Duration // periodic drain while online, default 5m
	Debounce    time.Duration // wait after offline->online before draining
	CallTimeout time.Duration // per remote call deadline
}

func (c *Config) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
	if c.Debounce <= 0 {
		c.Debounce = 2 * time.Second
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 15 * time.Second
	}
}

type Engine struct {
	store  *offline.Store
	remote RemoteStore
	cfg    Config

	inFlight atomic.Bool
	online   atomic.Bool

	mu       sync.Mutex
	lastSync *time.Time
	debounce *time.Timer
}

func New(store *offline.Store, remote RemoteStore, cfg Config) *Engine {
	cfg.applyDefaults()
	e := &Engine{
		store:  store,
		remote: remote,
		cfg:    cfg,
	}
	store.SetMutationHook(e.onLocalMutation)
	return e
}

// Run drives the periodic drain until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.online.Load() {
				e.syncAsync(ctx)
			}
		}
	}
}

// SetOnline records connectivity. The offline->online transition schedules a
// drain after a short debounce.
func (e *Engine) SetOnline(online bool) {
	was := e.online.Swap(online)
	if online && !was {
		e.mu.Lock()
		if e.debounce != nil {
			e.debounce.Stop()
		}
		e.debounce = time.AfterFunc(e.cfg.Debounce, func() {
			e.syncAsync(context.Background())
		})
		e.mu.Unlock()
	}
}

// Online reports the last connectivity state set.
func (e *Engine) Online() bool {
	return e.online.Load()
}

// Status is the at-a-glance view for the offline indicator.
func (e *Engine) Status() domain.SyncStatus {
	e.mu.Lock()
	last := e.lastSync
	e.mu.Unlock()
	return domain.SyncStatus{
		Online:     e.online.Load(),
		InProgress: e.inFlight.Load(),
		Pending:    e.store.PendingCount(),
		LastSyncAt: last,
	}
}

// SyncAll drains the current queue snapshot. If a drain is already running it
// returns immediately with a soft failure and leaves the queue untouched.
// Operations enqueued while a drain runs are picked up on the next cycle.
func (e *Engine) SyncAll(ctx context.Context) *domain.SyncResult {
	now := time.Now()
	if !e.inFlight.CompareAndSwap(false, true) {
		return &domain.SyncResult{
			Success:   false,
			Timestamp: now,
			Errors: []domain.SyncError{{
				Message: "sync already in progress",
			}},
		}
	}
	defer e.inFlight.Store(false)

	ops := e.store.QueueSnapshot()
	if len(ops) == 0 {
		e.markSynced(now)
		return &domain.SyncResult{Success: true, Timestamp: now}
	}

	var succeeded, failed []string
	failures := make(map[string]string)

	for start := 0; start < len(ops); start += e.cfg.BatchSize {
		end := start + e.cfg.BatchSize
		if end > len(ops) {
			end = len(ops)
		}
		// One operation failing never aborts its batch siblings.
		for _, op := range ops[start:end] {
			if err := e.dispatch(ctx, op); err != nil {
				failed = append(failed, op.ID)
				failures[op.ID] = err.Error()
				log.Printf("[sync] %s %s failed (retry %d): %v", op.Kind, op.ID, op.RetryCount, err)
			} else {
				succeeded = append(succeeded, op.ID)
			}
		}
	}

	dropped := e.store.ResolveAttempts(succeeded, failed, now)

	result := &domain.SyncResult{
		Success:   len(failed) == 0,
		Processed: len(succeeded),
		Failed:    len(failed),
		Timestamp: now,
	}
	droppedIDs := make(map[string]bool, len(dropped))
	for _, op := range dropped {
		droppedIDs[op.ID] = true
	}
	for _, op := range ops {
		msg, ok := failures[op.ID]
		if !ok {
			continue
		}
		result.Errors = append(result.Errors, domain.SyncError{
			OperationID: op.ID,
			Kind:        op.Kind,
			Message:     msg,
			Dropped:     droppedIDs[op.ID],
		})
	}

	e.markSynced(now)
	return result
}

// dispatch routes one operation to its kind-specific remote write. All remote
// failures look the same to the caller; retryability is decided by the retry
// budget alone.
func (e *Engine) dispatch(ctx context.Context, op domain.SyncOperation) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	defer cancel()

	switch op.Kind {
	case domain.OpModuleProgress:
		var p domain.ModuleProgressPayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return e.remote.ApplyModuleProgress(ctx, p)
	case domain.OpDrillResult:
		var p domain.DrillResultPayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return e.remote.ApplyDrillResult(ctx, p)
	case domain.OpQuizResult:
		var p domain.QuizResultPayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return e.remote.ApplyQuizResult(ctx, p)
	case domain.OpUserProfile:
		var p domain.UserProfilePayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return e.remote.ApplyUserProfile(ctx, p)
	case domain.OpAlertView:
		var p domain.AlertViewPayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return e.remote.ApplyAlertView(ctx, p)
	case domain.OpContactAccess:
		var p domain.ContactAccessPayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return e.remote.ApplyContactAccess(ctx, p)
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

func (e *Engine) markSynced(at time.Time) {
	e.mu.Lock()
	t := at
	e.lastSync = &t
	e.mu.Unlock()
}

// onLocalMutation is installed as the store's mutation hook: drain soon after
// any local change while online, if auto-sync is enabled. Skipped while a
// drain is running; those mutations wait for the next cycle.
func (e *Engine) onLocalMutation() {
	if !e.online.Load() || e.inFlight.Load() || !e.store.AutoSync() {
		return
	}
	e.syncAsync(context.Background())
}

func (e *Engine) syncAsync(ctx context.Context) {
	go func() {
		res := e.SyncAll(ctx)
		if res.Failed > 0 {
			log.Printf("[sync] drain finished: %d applied, %d failed", res.Processed, res.Failed)
		}
	}()
}
