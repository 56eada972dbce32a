package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"gavel/internal/config"
	"gavel/internal/logging"
	"gavel/internal/queue"
	"gavel/internal/services"
)

// Manager runs a bounded pool of workers that claim jobs from the queue and
// drive them through the pipeline. Errors are recorded on the job; nothing a
// job does can take the pool down.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	pipeline *Pipeline
	logger   *slog.Logger

	pollInterval       time.Duration
	errorRetryInterval time.Duration
	heartbeatInterval  time.Duration
	heartbeatTimeout   time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager constructs a worker pool manager.
func NewManager(cfg *config.Config, store *queue.Store, pipeline *Pipeline, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:                cfg,
		store:              store,
		pipeline:           pipeline,
		logger:             logging.NewComponentLogger(logger, "worker"),
		pollInterval:       time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		errorRetryInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		heartbeatInterval:  time.Duration(cfg.Workflow.HeartbeatInterval) * time.Second,
		heartbeatTimeout:   time.Duration(cfg.Workflow.HeartbeatTimeout) * time.Second,
	}
}

// Start launches the worker pool. It returns immediately; workers run until
// Stop or context cancellation.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("worker manager already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	workers := m.cfg.Workflow.WorkerCount
	if workers < 1 {
		workers = 1
	}
	m.logger.Info("starting worker pool", logging.Int("workers", workers))

	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.runWorker(runCtx, i)
	}
	if m.cfg.Workflow.ReclaimStale {
		m.wg.Add(1)
		go m.runReclaimLoop(runCtx)
	}
	return nil
}

// Stop cancels all workers and waits for in-flight jobs to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.logger.Info("worker pool stopped")
}

// Running reports whether the pool is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// runWorker claims and processes jobs until the context is cancelled.
func (m *Manager) runWorker(ctx context.Context, index int) {
	defer m.wg.Done()
	log := m.logger.With(logging.Int("worker", index))

	for {
		if ctx.Err() != nil {
			return
		}
		jobs, err := m.store.ClaimNext(ctx, 1)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("claim failed", logging.Error(err))
			if !sleepCtx(ctx, m.errorRetryInterval) {
				return
			}
			continue
		}
		if len(jobs) == 0 {
			if !sleepCtx(ctx, m.pollInterval) {
				return
			}
			continue
		}
		m.processJob(ctx, log, jobs[0])
	}
}

// processJob runs one claimed job through the pipeline and records the
// outcome. The job's run gets a correlation id carried through log context.
func (m *Manager) processJob(ctx context.Context, log *slog.Logger, job *queue.Job) {
	jobCtx := services.WithJobID(ctx, job.ID)
	jobCtx = services.WithRequestID(jobCtx, uuid.NewString())
	jobLog := logging.WithContext(jobCtx, log)

	jobLog.Info("processing job",
		logging.String("meeting", job.Ref.String()),
		logging.Int("priority", job.Priority),
		logging.Int("retry_count", job.RetryCount))

	heartbeatCtx, stopHeartbeat := context.WithCancel(jobCtx)
	var heartbeatWG sync.WaitGroup
	heartbeatWG.Add(1)
	go m.runHeartbeat(heartbeatCtx, &heartbeatWG, job.ID)

	result, err := m.pipeline.Process(jobCtx, job)

	stopHeartbeat()
	heartbeatWG.Wait()

	if err != nil {
		kind := services.Kind(err)
		if recordErr := m.store.Fail(context.WithoutCancel(jobCtx), job.ID, kind, err.Error()); recordErr != nil {
			jobLog.Error("failed to record job failure", logging.Error(recordErr))
		}
		jobLog.Warn("job failed",
			logging.String(logging.FieldEventType, "job_failed"),
			logging.String("error_kind", kind),
			logging.Bool("retryable", services.Retryable(kind)),
			logging.String(logging.FieldErrorHint, errorHint(kind)),
			logging.Error(err))
		return
	}

	if recordErr := m.store.Complete(context.WithoutCancel(jobCtx), job.ID, result); recordErr != nil {
		jobLog.Error("failed to record job completion", logging.Error(recordErr))
		return
	}
	jobLog.Info("job completed",
		logging.String(logging.FieldEventType, "job_completed"),
		logging.String("path", result.FilePath),
		logging.Int64("bytes", result.FileSize),
		logging.String(logging.FieldStrategy, result.Strategy))
}

// errorHint maps a failure kind to the operator's next step.
func errorHint(kind string) string {
	if services.Retryable(kind) {
		return "re-enqueue with 'gavel queue retry'"
	}
	switch kind {
	case services.KindNoCandidates:
		return "recording may not be published yet; retry after the archive updates"
	case services.KindConfiguration:
		return "check 'gavel config show'"
	default:
		return "inspect the log before retrying"
	}
}

// runHeartbeat refreshes the job's heartbeat until its run finishes.
func (m *Manager) runHeartbeat(ctx context.Context, wg *sync.WaitGroup, jobID int64) {
	defer wg.Done()
	interval := m.heartbeatInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.store.UpdateHeartbeat(ctx, jobID); err != nil && !errors.Is(err, context.Canceled) {
				m.logger.Warn("heartbeat update failed",
					logging.Int64(logging.FieldJobID, jobID),
					logging.Error(err))
			}
		}
	}
}

// runReclaimLoop returns jobs with expired heartbeats to pending. Only runs
// when reclaim_stale is configured on.
func (m *Manager) runReclaimLoop(ctx context.Context) {
	defer m.wg.Done()
	if m.heartbeatTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(m.heartbeatTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-m.heartbeatTimeout)
			reclaimed, err := m.store.ReclaimStaleProcessing(ctx, cutoff)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					m.logger.Warn("stale job reclaim failed", logging.Error(err))
				}
				continue
			}
			if reclaimed > 0 {
				m.logger.Info("reclaimed stale jobs", logging.Int64("count", reclaimed))
			}
		}
	}
}

// sleepCtx waits for the duration or context cancellation; false on cancel.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
