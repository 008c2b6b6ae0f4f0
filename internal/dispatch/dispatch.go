package dispatch

import (
	"context"

	"github.com/creatorhub/media-orchestrator/internal/models"
)

// Client submits finalized jobs to the external processing worker and sends
// best-effort stop notifications. The worker is an opaque collaborator: the
// only contract is the submit call and the webhook callbacks it produces.
type Client interface {
	Submit(ctx context.Context, job *models.JobRecord, params map[string]string) (string, error)
	Stop(ctx context.Context, job *models.JobRecord) error
}
