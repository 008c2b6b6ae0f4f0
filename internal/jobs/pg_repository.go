package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/pkg/utils"
)

// Repository is the durable Job Record store. Every mutating method issues a
// guarded UPDATE so interleaved writers (upload phase, dispatch, webhooks)
// can never blindly overwrite each other.
type Repository interface {
	CreateJob(ctx context.Context, job *models.JobRecord) (*models.JobRecord, error)
	GetJobByID(ctx context.Context, jobID uuid.UUID) (*models.JobRecord, error)
	GetJobs(ctx context.Context, userID uuid.UUID, pq *utils.Pagination) (*models.JobList, error)
	DeleteJob(ctx context.Context, userID, jobID uuid.UUID) error

	// UpdateStatus moves status from one exact state to another; reports
	// ErrInvalidTransition when the row is no longer in the expected state.
	UpdateStatus(ctx context.Context, jobID uuid.UUID, from, to models.JobStatus, step string) error

	// ApplyProgress stores progress/current_step only when the new value is
	// not behind the stored one and the job is still active. It reports
	// whether the write was applied; a stale or duplicate event is a no-op.
	ApplyProgress(ctx context.Context, jobID uuid.UUID, progress int, step string) (bool, error)

	// MarkReadyWithArtifacts, MarkFailed and MarkCancelled each succeed at
	// most once per job; a terminal row rejects them. The ready flip and its
	// artifact rows commit in one transaction, so a job cancelled mid-flight
	// is never left with orphan outputs.
	MarkReadyWithArtifacts(ctx context.Context, jobID uuid.UUID, artifacts []*models.Artifact) error
	MarkFailed(ctx context.Context, jobID uuid.UUID, stage, message string) error
	MarkCancelled(ctx context.Context, jobID uuid.UUID) error

	// AcquireLock claims the job for dispatch with compare-and-set: the
	// write lands only on an uploaded job with no lock present. A crashed
	// worker's lock is cleared through ResetStaleJob, never reclaimed in
	// place.
	AcquireLock(ctx context.Context, jobID, lockID uuid.UUID) error
	ReleaseLock(ctx context.Context, jobID, lockID uuid.UUID) error
	SetExternalTask(ctx context.Context, jobID uuid.UUID, taskID string) error

	// ResetStaleJob fails a job whose lock expired mid-processing. Supervisory
	// action, distinct from the client-side stale detector.
	ResetStaleJob(ctx context.Context, jobID uuid.UUID, ttl time.Duration) error

	GetArtifacts(ctx context.Context, jobID uuid.UUID) ([]*models.Artifact, error)
}
