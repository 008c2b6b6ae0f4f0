package uploads

import (
	"context"

	"github.com/creatorhub/media-orchestrator/internal/models"
)

// AWSRepository wraps the S3 multipart protocol. Part bytes never pass
// through the orchestrator: clients PUT directly against presigned URLs and
// only the returned ETags are recorded here.
type AWSRepository interface {
	CreateMultipartUpload(ctx context.Context, bucket, key, contentType string) (string, error)
	PresignUploadPart(ctx context.Context, bucket, key, uploadID string, partNumber int) (string, error)
	CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []*models.UploadPart) error
	AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error
}
