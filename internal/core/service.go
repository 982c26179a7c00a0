package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/catalogimport/internal/config"
)

// historySize caps the in-memory run history.
const historySize = 100

// RunPhase is the lifecycle stage of an import run.
type RunPhase string

const (
	PhaseQueued      RunPhase = "queued"
	PhaseReconciling RunPhase = "reconciling"
	PhaseComplete    RunPhase = "complete"
	PhaseFailed      RunPhase = "failed"
	PhaseCancelled   RunPhase = "cancelled"
)

// ImportRequest is one file's worth of records to reconcile.
type ImportRequest struct {
	FileName string
	Format   string
	Records  []ProductRecord
	DryRun   bool
}

// RunStatus reports a run that is in progress or finished.
type RunStatus struct {
	RunID  string        `json:"runId"`
	Phase  RunPhase      `json:"phase"`
	Done   int           `json:"done"`
	Total  int           `json:"total"`
	Result *ImportResult `json:"result,omitempty"`
}

// Service runs imports against the catalog and keeps their history.
type Service struct {
	opener   SessionOpener
	recorder RunRecorder
	limiter  *ImportLimiter
	cfg      config.ImportConfig
	logger   *slog.Logger

	mu      sync.RWMutex
	active  map[string]*activeRun
	history []*ImportResult
}

type activeRun struct {
	status RunStatus
	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a Service. opener may be nil when only dry runs are
// expected; recorder may be nil to keep history in memory only.
func NewService(opener SessionOpener, recorder RunRecorder, cfg config.ImportConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		opener:   opener,
		recorder: recorder,
		limiter:  NewImportLimiter(1, cfg.MaxWaitTime),
		cfg:      cfg,
		logger:   logger,
		active:   make(map[string]*activeRun),
	}
}

// Import runs req to completion and returns its result. The error is
// non-nil only when the run could not start; per-record failures are
// reported in the result.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	return s.execute(ctx, uuid.NewString(), req, nil)
}

// Start queues req and returns its run ID immediately. Progress and the
// final result are available through Status.
func (s *Service) Start(ctx context.Context, req ImportRequest) (string, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	runID := uuid.NewString()
	runCtx, cancel := context.WithCancel(context.Background())

	run := &activeRun{
		status: RunStatus{RunID: runID, Phase: PhaseQueued, Total: len(req.Records)},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.active[runID] = run
	s.mu.Unlock()

	go func() {
		// Waiters are released last so they observe a free slot.
		defer close(run.done)
		defer s.limiter.Release()
		defer cancel()
		defer func() {
			s.mu.Lock()
			delete(s.active, runID)
			s.mu.Unlock()
		}()

		progress := func(done, total int) {
			s.mu.Lock()
			run.status.Phase = PhaseReconciling
			run.status.Done = done
			s.mu.Unlock()
		}

		if _, err := s.execute(runCtx, runID, req, progress); err != nil {
			s.logger.Error("import run failed to start", "run_id", runID, "error", err)
		}
	}()

	return runID, nil
}

// Cancel stops an in-progress run. Records already processed stay committed.
func (s *Service) Cancel(runID string) error {
	s.mu.RLock()
	run, ok := s.active[runID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	run.cancel()
	return nil
}

// CancelAll cancels every in-progress run and returns how many were
// signalled. Each still performs its final commit.
func (s *Service) CancelAll() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, run := range s.active {
		run.cancel()
	}
	return len(s.active)
}

// Wait blocks until the run finishes. Unknown or finished runs return at once.
func (s *Service) Wait(ctx context.Context, runID string) error {
	s.mu.RLock()
	run, ok := s.active[runID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	select {
	case <-run.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) execute(ctx context.Context, runID string, req ImportRequest, progress ProgressFunc) (*ImportResult, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	logger := s.logger.With("run_id", runID, "file", req.FileName)
	result := &ImportResult{
		RunID:     runID,
		FileName:  req.FileName,
		Format:    req.Format,
		DryRun:    req.DryRun,
		StartedAt: time.Now().UTC(),
	}

	session, err := s.open(ctx, req.DryRun)
	if err != nil {
		logger.Error("cannot open catalog session", "error", err)
		result.Error = err.Error()
		s.finish(result)
		return result, err
	}
	defer session.Close(context.WithoutCancel(ctx))

	logger.Info("import started", "records", len(req.Records), "dry_run", req.DryRun)

	persister := NewPersister(session, PersisterOptions{
		CommitEvery:  s.cfg.CommitEvery,
		AlternateTag: s.cfg.AlternateTag,
		Progress:     progress,
	}, logger)
	result.Summary = persister.Run(ctx, req.Records)

	if result.Cancelled {
		result.Error = fmt.Sprintf("import cancelled: %v", context.Cause(ctx))
	}
	s.finish(result)

	logger.Info("import finished",
		"processed", result.Processed,
		"new", result.New,
		"duplicates", result.Duplicates,
		"alternates", result.Alternates,
		"failed", result.Failed,
		"commits", result.Commits,
		"duration", result.Duration,
	)

	if !req.DryRun && s.recorder != nil {
		if err := s.recorder.RecordRun(context.WithoutCancel(ctx), *result); err != nil {
			logger.Warn("failed to record import run", "error", err)
		}
	}

	return result, nil
}

func (s *Service) open(ctx context.Context, dryRun bool) (Session, error) {
	if dryRun {
		return NewMemoryStore(), nil
	}
	if s.opener == nil {
		return nil, fmt.Errorf("%w: no catalog database configured", ErrConnection)
	}
	session, err := s.opener.Open(ctx)
	if err != nil {
		if errors.Is(err, ErrConnection) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return session, nil
}

func (s *Service) finish(result *ImportResult) {
	result.FinishedAt = time.Now().UTC()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append([]*ImportResult{result}, s.history...)
	if len(s.history) > historySize {
		s.history = s.history[:historySize]
	}
}

// Status returns the state of a run: live progress while it runs, then
// its result from memory or the recorder.
func (s *Service) Status(ctx context.Context, runID string) (*RunStatus, error) {
	s.mu.RLock()
	if run, ok := s.active[runID]; ok {
		st := run.status
		s.mu.RUnlock()
		return &st, nil
	}
	for _, r := range s.history {
		if r.RunID == runID {
			s.mu.RUnlock()
			return statusOf(r), nil
		}
	}
	s.mu.RUnlock()

	if s.recorder == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	r, err := s.recorder.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return statusOf(r), nil
}

func statusOf(r *ImportResult) *RunStatus {
	phase := PhaseComplete
	switch {
	case r.Cancelled:
		phase = PhaseCancelled
	case r.Error != "":
		phase = PhaseFailed
	}
	return &RunStatus{RunID: r.RunID, Phase: phase, Done: r.Total, Total: r.Total, Result: r}
}

// Runs lists recent runs, newest first. With a recorder, persisted history
// is authoritative; dry runs are only kept in memory.
func (s *Service) Runs(ctx context.Context, limit int) ([]ImportResult, error) {
	if limit <= 0 || limit > historySize {
		limit = historySize
	}
	if s.recorder != nil {
		return s.recorder.ListRuns(ctx, limit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	n := min(limit, len(s.history))
	out := make([]ImportResult, n)
	for i := 0; i < n; i++ {
		out[i] = *s.history[i]
	}
	return out, nil
}

// LimiterStatus exposes the import slot state.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until no import is running or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
