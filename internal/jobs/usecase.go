package jobs

import (
	"context"

	"github.com/google/uuid"

	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/pkg/utils"
)

// JobStatusView is the monitor-enriched read used by the progress UI.
type JobStatusView struct {
	Job       *models.JobRecord  `json:"job"`
	Monitor   MonitorState       `json:"monitor"`
	Artifacts []*models.Artifact `json:"artifacts,omitempty"`
}

type UseCase interface {
	CreateJob(ctx context.Context, input *models.JobCreateInput) (*models.JobRecord, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.JobRecord, error)
	ListJobs(ctx context.Context, pq *utils.Pagination) (*models.JobList, error)
	DeleteJob(ctx context.Context, jobID uuid.UUID) error

	// Dispatch claims the processing lock and submits the uploaded object to
	// the external worker. ErrAlreadyClaimed when a live lock exists.
	Dispatch(ctx context.Context, jobID uuid.UUID) (*models.JobRecord, error)

	// CancelJob aborts any in-flight upload, best-effort notifies the worker,
	// and marks the record terminal so later webhooks cannot resurrect it.
	CancelJob(ctx context.Context, jobID uuid.UUID) error

	// RetryJob creates a fresh job from a terminal or stalled one; the old
	// record is never mutated in place.
	RetryJob(ctx context.Context, jobID uuid.UUID) (*models.JobRecord, error)

	GetStatus(ctx context.Context, jobID uuid.UUID) (*JobStatusView, error)
	WatchJob(ctx context.Context, jobID uuid.UUID) (<-chan *models.JobRecord, func(), error)
	GetArtifacts(ctx context.Context, jobID uuid.UUID) ([]*models.Artifact, error)

	// ResetStaleJob is the admin override for jobs wedged by a crashed
	// worker whose lock expired.
	ResetStaleJob(ctx context.Context, jobID uuid.UUID) error
}

// UploadAborter is implemented by the upload session manager; CancelJob uses
// it to abort an in-flight multipart upload without importing the uploads
// package.
type UploadAborter interface {
	AbortActiveSessionForJob(ctx context.Context, jobID uuid.UUID) error
}
