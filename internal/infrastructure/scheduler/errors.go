package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrJobAlreadyQueued is returned when a job of the same kind is pending or running
	ErrJobAlreadyQueued = errors.New("a sync job of this kind is already queued")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrUnsupportedSyncKind is returned for kinds the executor cannot run
	ErrUnsupportedSyncKind = errors.New("unsupported sync kind")

	// ErrSyncPassFailed is returned when a pass completes but reports failure
	ErrSyncPassFailed = errors.New("sync pass failed")
)
