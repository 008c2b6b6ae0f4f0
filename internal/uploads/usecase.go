package uploads

import (
	"context"

	"github.com/google/uuid"

	"github.com/creatorhub/media-orchestrator/internal/models"
)

// ResumeOutput returns the session plus the authoritative completed-part
// list; the client must reconcile against it before uploading further parts.
type ResumeOutput struct {
	Session *models.UploadSession `json:"session"`
	Parts   []*models.UploadPart  `json:"parts"`
}

type UseCase interface {
	CreateSession(ctx context.Context, input *models.UploadCreateInput) (*models.UploadCreateOutput, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*ResumeOutput, error)
	PresignPart(ctx context.Context, sessionID uuid.UUID, partNumber int) (string, error)
	RecordPart(ctx context.Context, sessionID uuid.UUID, input *models.RecordPartInput) error
	CompleteSession(ctx context.Context, sessionID uuid.UUID) (string, error)
	PauseSession(ctx context.Context, sessionID uuid.UUID) error
	ResumeSession(ctx context.Context, sessionID uuid.UUID) (*ResumeOutput, error)
	CancelSession(ctx context.Context, sessionID uuid.UUID) error

	// AbortActiveSessionForJob aborts the in-flight multipart upload for a
	// job being cancelled. No-op when nothing is active.
	AbortActiveSessionForJob(ctx context.Context, jobID uuid.UUID) error
}
