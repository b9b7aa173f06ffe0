package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/storesync/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Sync Job Types
// ---------------------------------------------------------------------------

// SyncJobStatus represents the status of a sync job
type SyncJobStatus string

const (
	SyncJobStatusPending SyncJobStatus = "PENDING"
	SyncJobStatusRunning SyncJobStatus = "RUNNING"
	SyncJobStatusSuccess SyncJobStatus = "SUCCESS"
	SyncJobStatusPartial SyncJobStatus = "PARTIAL"
	SyncJobStatusFailed  SyncJobStatus = "FAILED"
	SyncJobStatusSkipped SyncJobStatus = "SKIPPED"
)

// maxRetryDelay caps the exponential back-off
const maxRetryDelay = 30 * time.Minute

// SyncJob is one scheduled sync pass
type SyncJob struct {
	ID          uuid.UUID
	Kind        integration.SyncKind
	Status      SyncJobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time

	// Pass results
	Created    int
	Updated    int
	ErrorCount int
}

// NewSyncJob creates a new pending sync job
func NewSyncJob(kind integration.SyncKind, maxRetries int) *SyncJob {
	return &SyncJob{
		ID:         uuid.New(),
		Kind:       kind,
		Status:     SyncJobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *SyncJob) Start() {
	now := time.Now()
	j.Status = SyncJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete records the pass counts. Item errors or a partial pass make the job PARTIAL.
func (j *SyncJob) Complete(created, updated, errorCount int, partial bool) {
	now := time.Now()
	j.Created = created
	j.Updated = updated
	j.ErrorCount = errorCount
	j.CompletedAt = &now

	if errorCount == 0 && !partial {
		j.Status = SyncJobStatusSuccess
	} else {
		j.Status = SyncJobStatusPartial
	}
}

// Fail marks the job as failed
func (j *SyncJob) Fail(err string) {
	now := time.Now()
	j.Status = SyncJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// Skip marks the job as skipped because another pass of its kind holds the lock
func (j *SyncJob) Skip(reason string) {
	now := time.Now()
	j.Status = SyncJobStatusSkipped
	j.CompletedAt = &now
	j.Error = reason
}

// ShouldRetry returns true if the job should be retried
func (j *SyncJob) ShouldRetry() bool {
	return j.Status == SyncJobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry with exponential backoff and returns the delay
func (j *SyncJob) ScheduleRetry(baseDelay time.Duration) time.Duration {
	j.RetryCount++
	j.Status = SyncJobStatusPending
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > maxRetryDelay || delay <= 0 {
		delay = maxRetryDelay
	}
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
	return delay
}

// ---------------------------------------------------------------------------
// SyncExecutor Interface
// ---------------------------------------------------------------------------

// SyncExecutor runs one sync job and records its results on the job
type SyncExecutor interface {
	Execute(ctx context.Context, job *SyncJob) error
}

// ---------------------------------------------------------------------------
// SyncSchedulerConfig
// ---------------------------------------------------------------------------

// SyncSchedulerConfig holds configuration for the sync scheduler
type SyncSchedulerConfig struct {
	// MaxConcurrentJobs is the number of workers
	MaxConcurrentJobs int
	// JobTimeout is the maximum time a job can run
	JobTimeout time.Duration
	// RetryAttempts is the number of retry attempts for failed jobs
	RetryAttempts int
	// RetryDelay is the base delay between retries
	RetryDelay time.Duration
	// QueueSize bounds the pending job queue
	QueueSize int
	// MaxHistory bounds the in-memory job history
	MaxHistory int
}

// DefaultSyncSchedulerConfig returns default configuration
func DefaultSyncSchedulerConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		MaxConcurrentJobs: 3,
		JobTimeout:        15 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        time.Minute,
		QueueSize:         100,
		MaxHistory:        100,
	}
}

// Validate validates the configuration
func (c *SyncSchedulerConfig) Validate() error {
	if c.MaxConcurrentJobs <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts > 0 && c.RetryDelay <= 0 {
		return ErrInvalidConfig
	}
	if c.QueueSize <= 0 || c.MaxHistory <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// SyncScheduler
// ---------------------------------------------------------------------------

// SyncScheduler runs sync jobs on a worker pool. At most one job per kind is
// queued or running at a time.
type SyncScheduler struct {
	config   SyncSchedulerConfig
	executor SyncExecutor
	logger   *zap.Logger

	jobs      chan *SyncJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	active    map[integration.SyncKind]uuid.UUID
	timers    map[uuid.UUID]*time.Timer

	historyMu sync.RWMutex
	history   []*SyncJob
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(config SyncSchedulerConfig, executor SyncExecutor, logger *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SyncScheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		jobs:     make(chan *SyncJob, config.QueueSize),
		active:   make(map[integration.SyncKind]uuid.UUID),
		timers:   make(map[uuid.UUID]*time.Timer),
		history:  make([]*SyncJob, 0, config.MaxHistory),
	}, nil
}

// Start starts the worker pool
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Sync scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler. Running jobs see their context cancelled.
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	if s.cancel != nil {
		s.cancel()
	}
	close(s.jobs)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the worker pool is started
func (s *SyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// ScheduleSync queues a new job for kind
func (s *SyncScheduler) ScheduleSync(kind integration.SyncKind) (*SyncJob, error) {
	if !kind.IsValid() {
		return nil, integration.ErrInvalidSyncKind
	}
	job := NewSyncJob(kind, s.config.RetryAttempts)
	if err := s.SubmitJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

// SubmitJob submits a job for execution
func (s *SyncScheduler) SubmitJob(job *SyncJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	if owner, ok := s.active[job.Kind]; ok && owner != job.ID {
		return ErrJobAlreadyQueued
	}

	select {
	case s.jobs <- job:
		s.active[job.Kind] = job.ID
		s.logger.Debug("Sync job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("sync_type", job.Kind.String()),
			zap.Int("retry_count", job.RetryCount),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (s *SyncScheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *SyncScheduler) processJob(ctx context.Context, job *SyncJob, workerID int) {
	job.Start()
	log := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("sync_type", job.Kind.String()),
	)
	log.Info("Processing sync job", zap.Int("retry_count", job.RetryCount))

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	err := s.executor.Execute(jobCtx, job)
	switch {
	case errors.Is(err, integration.ErrSyncInProgress):
		job.Skip(err.Error())
		log.Info("Sync job skipped, pass already running")
	case err != nil:
		job.Fail(err.Error())
		log.Error("Sync job failed", zap.Error(err))
		if job.ShouldRetry() && ctx.Err() == nil {
			s.retryLater(job)
			return
		}
	default:
		log.Info("Sync job completed",
			zap.String("status", string(job.Status)),
			zap.Int("created", job.Created),
			zap.Int("updated", job.Updated),
			zap.Int("errors", job.ErrorCount),
		)
	}

	s.finish(job)
}

// retryLater re-submits job once its back-off elapses. The kind stays reserved meanwhile.
func (s *SyncScheduler) retryLater(job *SyncJob) {
	delay := job.ScheduleRetry(s.config.RetryDelay)
	s.logger.Info("Sync job scheduled for retry",
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Time("next_retry_at", *job.NextRetryAt),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		job.Fail("scheduler stopped before retry")
		s.releaseLocked(job)
		s.addToHistory(job)
		return
	}
	s.timers[job.ID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, job.ID)
		s.mu.Unlock()
		if err := s.SubmitJob(job); err != nil {
			s.logger.Warn("Failed to re-queue sync job for retry",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
			job.Fail(err.Error())
			s.finish(job)
		}
	})
}

func (s *SyncScheduler) finish(job *SyncJob) {
	s.mu.Lock()
	s.releaseLocked(job)
	s.mu.Unlock()
	s.addToHistory(job)
}

func (s *SyncScheduler) releaseLocked(job *SyncJob) {
	if s.active[job.Kind] == job.ID {
		delete(s.active, job.Kind)
	}
}

func (s *SyncScheduler) addToHistory(job *SyncJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*SyncJob{job}, s.history...)
	if len(s.history) > s.config.MaxHistory {
		s.history = s.history[:s.config.MaxHistory]
	}
}

// GetJobHistory returns finished jobs, newest first
func (s *SyncScheduler) GetJobHistory(limit int) []*SyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	result := make([]*SyncJob, limit)
	copy(result, s.history[:limit])
	return result
}

// GetJobHistoryByKind returns finished jobs of kind, newest first
func (s *SyncScheduler) GetJobHistoryByKind(kind integration.SyncKind, limit int) []*SyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	result := make([]*SyncJob, 0)
	for _, job := range s.history {
		if job.Kind != kind {
			continue
		}
		result = append(result, job)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result
}
