package uploads

import (
	"context"

	"github.com/google/uuid"

	"github.com/creatorhub/media-orchestrator/internal/models"
)

// Repository persists upload sessions and their completed parts. Parts are
// deduplicated by part number: recording a part the client re-uploaded
// replaces the previous ETag.
type Repository interface {
	CreateSession(ctx context.Context, session *models.UploadSession) (*models.UploadSession, error)
	GetSessionByID(ctx context.Context, sessionID uuid.UUID) (*models.UploadSession, error)
	GetActiveSessionByJobID(ctx context.Context, jobID uuid.UUID) (*models.UploadSession, error)
	UpdateSessionStatus(ctx context.Context, sessionID uuid.UUID, from, to models.UploadStatus) error

	UpsertPart(ctx context.Context, part *models.UploadPart) error
	GetParts(ctx context.Context, sessionID uuid.UUID) ([]*models.UploadPart, error)
}
