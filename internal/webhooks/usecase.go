package webhooks

import (
	"context"

	"github.com/creatorhub/media-orchestrator/internal/models"
)

// UseCase applies worker-reported events to the Job Record. Every method is
// safe to invoke repeatedly with the same event: delivery is at-least-once
// and ordering is not guaranteed.
type UseCase interface {
	ApplyEvent(ctx context.Context, event *models.WorkerEvent) error
}
