package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/creatorhub/media-orchestrator/internal/config"
	"github.com/creatorhub/media-orchestrator/internal/jobs"
	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/internal/webhooks"
	"github.com/creatorhub/media-orchestrator/pkg/logger"
	"github.com/creatorhub/media-orchestrator/pkg/utils"
)

type webhookUC struct {
	cfg       *config.Config
	jobRepo   jobs.Repository
	redisRepo jobs.RedisRepository
	logger    logger.Logger
}

func NewWebhookUseCase(
	cfg *config.Config,
	jobRepo jobs.Repository,
	redisRepo jobs.RedisRepository,
	log logger.Logger,
) webhooks.UseCase {
	return &webhookUC{
		cfg:       cfg,
		jobRepo:   jobRepo,
		redisRepo: redisRepo,
		logger:    log,
	}
}

// ApplyEvent is the single writer of worker-side state. Unknown jobs are
// acknowledged as no-ops (the job may have been deleted); terminal jobs
// reject every event, so a cancel can never be resurrected.
func (u *webhookUC) ApplyEvent(ctx context.Context, event *models.WorkerEvent) error {
	if err := utils.ValidateStruct(ctx, event); err != nil {
		return fmt.Errorf("invalid event: %v", err)
	}

	job, err := u.jobRepo.GetJobByID(ctx, event.JobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			u.logger.Infof("webhook for unknown job %s ignored", event.JobID)
			return nil
		}
		return err
	}
	if job.Status.IsTerminal() {
		u.logger.Infof("webhook for terminal job %s ignored (status %s)", job.JobID, job.Status)
		return nil
	}

	switch event.EventType {
	case models.WorkerEventProgress:
		return u.applyProgress(ctx, job, event)
	case models.WorkerEventCompleted:
		return u.applyCompleted(ctx, job, event)
	case models.WorkerEventFailed:
		return u.applyFailed(ctx, job, event)
	default:
		return fmt.Errorf("unknown event type: %s", event.EventType)
	}
}

func (u *webhookUC) applyProgress(ctx context.Context, job *models.JobRecord, event *models.WorkerEvent) error {
	// A worker may advance the processing sub-state alongside progress.
	// Terminal states never ride on a progress event: ready and failed have
	// their own event types and cancellation is a user action.
	if event.Status.IsProcessing() && event.Status != job.Status && job.Status.CanTransition(event.Status) {
		if err := u.jobRepo.UpdateStatus(ctx, job.JobID, job.Status, event.Status, event.CurrentStep); err != nil &&
			!errors.Is(err, jobs.ErrInvalidTransition) {
			return err
		}
	}

	applied, err := u.jobRepo.ApplyProgress(ctx, job.JobID, event.Progress, event.CurrentStep)
	if err != nil {
		return err
	}
	if !applied {
		// Stale or duplicate delivery; stored progress stays ahead.
		u.logger.Debugf("stale progress %d for job %s dropped", event.Progress, job.JobID)
		return nil
	}
	u.publish(ctx, job.JobID)
	return nil
}

func (u *webhookUC) applyCompleted(ctx context.Context, job *models.JobRecord, event *models.WorkerEvent) error {
	// A success with nothing to show is not a success.
	if len(event.Artifacts) == 0 {
		return u.applyFailed(ctx, job, &models.WorkerEvent{
			JobID:      job.JobID,
			EventType:  models.WorkerEventFailed,
			Error:      "no output produced",
			ErrorStage: "output",
		})
	}

	artifacts := make([]*models.Artifact, 0, len(event.Artifacts))
	for _, wa := range event.Artifacts {
		bucket := wa.S3Bucket
		if bucket == "" {
			bucket = u.cfg.S3.OutputBucket
		}
		kind := wa.Kind
		if kind == "" {
			kind = models.ArtifactKind(job.Kind)
		}
		artifacts = append(artifacts, &models.Artifact{
			JobID:    job.JobID,
			Kind:     kind,
			S3Key:    wa.S3Key,
			S3Bucket: bucket,
			Title:    wa.Title,
			Duration: wa.Duration,
		})
	}

	// The status flip and the artifact rows commit together: a ready job
	// always has its outputs, and a job cancelled mid-flight gets neither.
	if err := u.jobRepo.MarkReadyWithArtifacts(ctx, job.JobID, artifacts); err != nil {
		if errors.Is(err, jobs.ErrTerminalState) {
			return nil
		}
		return err
	}
	u.logger.Infof("job %s completed with %d artifacts", job.JobID, len(artifacts))
	u.publish(ctx, job.JobID)
	return nil
}

func (u *webhookUC) applyFailed(ctx context.Context, job *models.JobRecord, event *models.WorkerEvent) error {
	stage := event.ErrorStage
	if stage == "" {
		stage = string(job.Status)
	}
	message := event.Error
	if message == "" {
		message = "worker reported failure"
	}
	if err := u.jobRepo.MarkFailed(ctx, job.JobID, stage, message); err != nil {
		if errors.Is(err, jobs.ErrTerminalState) {
			return nil
		}
		return err
	}
	u.logger.Infof("job %s failed at stage %s: %s", job.JobID, stage, message)
	u.publish(ctx, job.JobID)
	return nil
}

func (u *webhookUC) publish(ctx context.Context, jobID uuid.UUID) {
	job, err := u.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		u.logger.Warnf("publish - reload job %s: %v", jobID, err)
		return
	}
	if err = u.redisRepo.PublishUpdate(ctx, job); err != nil {
		u.logger.Warnf("publish job update %s: %v", job.JobID, err)
	}
	if err = u.redisRepo.CacheJob(ctx, job, jobs.SnapshotTTL); err != nil {
		u.logger.Warnf("cache job snapshot %s: %v", job.JobID, err)
	}
}
