package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/creatorhub/media-orchestrator/internal/models"
)

// SnapshotTTL bounds how long a cached job snapshot may outlive its last
// write. Every writer refreshes the snapshot, so the TTL only covers deleted
// jobs aging out.
const SnapshotTTL = 2 * time.Minute

// RedisRepository carries the live-update side channel: every job write is
// published for watchers, and claim attempts are mirrored as a SetNX fast
// path so duplicate dispatches are rejected before touching postgres.
type RedisRepository interface {
	PublishUpdate(ctx context.Context, job *models.JobRecord) error
	SubscribeToJob(ctx context.Context, jobID uuid.UUID) (<-chan *models.JobRecord, func(), error)

	CacheJob(ctx context.Context, job *models.JobRecord, ttl time.Duration) error
	GetCachedJob(ctx context.Context, jobID uuid.UUID) (*models.JobRecord, error)

	TryClaim(ctx context.Context, jobID, lockID uuid.UUID, ttl time.Duration) (bool, error)
	ReleaseClaim(ctx context.Context, jobID, lockID uuid.UUID) error
}
