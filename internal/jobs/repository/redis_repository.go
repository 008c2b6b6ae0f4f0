package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/creatorhub/media-orchestrator/internal/jobs"
	"github.com/creatorhub/media-orchestrator/internal/models"
)

const (
	jobUpdateChannelPrefix = "job:updates:"
	jobSnapshotPrefix      = "job:snapshot:"
	jobClaimPrefix         = "job:claim:"
)

type jobRedisRepo struct {
	redisClient *redis.Client
}

func NewJobRedisRepo(redisClient *redis.Client) jobs.RedisRepository {
	return &jobRedisRepo{
		redisClient: redisClient,
	}
}

func (r *jobRedisRepo) PublishUpdate(ctx context.Context, job *models.JobRecord) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job update: %w", err)
	}
	if err = r.redisClient.Publish(ctx, jobUpdateChannelPrefix+job.JobID.String(), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish job update: %w", err)
	}
	return nil
}

func (r *jobRedisRepo) SubscribeToJob(ctx context.Context, jobID uuid.UUID) (<-chan *models.JobRecord, func(), error) {
	pubsub := r.redisClient.Subscribe(ctx, jobUpdateChannelPrefix+jobID.String())
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to job updates: %w", err)
	}
	out := make(chan *models.JobRecord)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			job := &models.JobRecord{}
			if err := json.Unmarshal([]byte(msg.Payload), job); err != nil {
				continue
			}
			select {
			case out <- job:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, func() { pubsub.Close() }, nil
}

func (r *jobRedisRepo) CacheJob(ctx context.Context, job *models.JobRecord, ttl time.Duration) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job snapshot: %w", err)
	}
	return r.redisClient.Set(ctx, jobSnapshotPrefix+job.JobID.String(), payload, ttl).Err()
}

func (r *jobRedisRepo) GetCachedJob(ctx context.Context, jobID uuid.UUID) (*models.JobRecord, error) {
	payload, err := r.redisClient.Get(ctx, jobSnapshotPrefix+jobID.String()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, jobs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job snapshot: %w", err)
	}
	job := &models.JobRecord{}
	if err = json.Unmarshal([]byte(payload), job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job snapshot: %w", err)
	}
	return job, nil
}

func (r *jobRedisRepo) TryClaim(ctx context.Context, jobID, lockID uuid.UUID, ttl time.Duration) (bool, error) {
	locked, err := r.redisClient.SetNX(ctx, jobClaimPrefix+jobID.String(), lockID.String(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set claim lock: %w", err)
	}
	return locked, nil
}

func (r *jobRedisRepo) ReleaseClaim(ctx context.Context, jobID, lockID uuid.UUID) error {
	key := jobClaimPrefix + jobID.String()
	holder, err := r.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("failed to read claim lock: %w", err)
	}
	// Only the holder may release; an expired-and-reacquired lock stays.
	if holder != lockID.String() {
		return nil
	}
	return r.redisClient.Del(ctx, key).Err()
}
