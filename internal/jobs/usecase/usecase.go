package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/creatorhub/media-orchestrator/internal/config"
	"github.com/creatorhub/media-orchestrator/internal/dispatch"
	"github.com/creatorhub/media-orchestrator/internal/jobs"
	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/pkg/logger"
	"github.com/creatorhub/media-orchestrator/pkg/utils"
)

type jobUC struct {
	cfg        *config.Config
	jobRepo    jobs.Repository
	redisRepo  jobs.RedisRepository
	dispatcher dispatch.Client
	aborter    jobs.UploadAborter
	monitor    jobs.Monitor
	logger     logger.Logger
}

func NewJobUseCase(
	cfg *config.Config,
	jobRepo jobs.Repository,
	redisRepo jobs.RedisRepository,
	dispatcher dispatch.Client,
	aborter jobs.UploadAborter,
	log logger.Logger,
) jobs.UseCase {
	return &jobUC{
		cfg:        cfg,
		jobRepo:    jobRepo,
		redisRepo:  redisRepo,
		dispatcher: dispatcher,
		aborter:    aborter,
		monitor:    jobs.NewMonitor(cfg.Monitor.StaleThreshold, cfg.Monitor.MaxDuration),
		logger:     log,
	}
}

func (u *jobUC) CreateJob(ctx context.Context, input *models.JobCreateInput) (*models.JobRecord, error) {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		u.logger.Errorf("CreateJob - GetUserFromCtx: %v", err)
		return nil, err
	}
	if err = utils.ValidateStruct(ctx, input); err != nil {
		u.logger.Errorf("CreateJob - ValidateStruct: %v", err)
		return nil, fmt.Errorf("invalid input: %v", err)
	}
	job := &models.JobRecord{
		UserID:         user.UserID,
		ProfileID:      input.ProfileID,
		Kind:           input.Kind,
		SourceFileName: input.SourceFileName,
		SourceS3Key:    fmt.Sprintf("uploads/%s/%s/%s", user.UserID, uuid.New(), input.SourceFileName),
		SourceBucket:   u.cfg.S3.UploadBucket,
		AttemptCount:   1,
	}
	created, err := u.jobRepo.CreateJob(ctx, job)
	if err != nil {
		u.logger.Errorf("CreateJob - repo.CreateJob: %v", err)
		return nil, err
	}
	u.publish(ctx, created)
	return created, nil
}

// getOwnedJob loads a job and enforces ownership. Admins may read any job.
func (u *jobUC) getOwnedJob(ctx context.Context, jobID uuid.UUID) (*models.JobRecord, error) {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	job, err := u.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != user.UserID && !user.IsAdmin() {
		u.logger.Warnf("user %s is not authorized to access job %s", user.UserID, jobID)
		return nil, jobs.ErrForbidden
	}
	return job, nil
}

// GetJob serves plain reads through the snapshot cache; every job write
// refreshes the snapshot, so a hit is as fresh as the last mutation.
func (u *jobUC) GetJob(ctx context.Context, jobID uuid.UUID) (*models.JobRecord, error) {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if cached, cErr := u.redisRepo.GetCachedJob(ctx, jobID); cErr == nil && cached != nil {
		if cached.UserID != user.UserID && !user.IsAdmin() {
			return nil, jobs.ErrForbidden
		}
		return cached, nil
	}
	job, err := u.getOwnedJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if cErr := u.redisRepo.CacheJob(ctx, job, jobs.SnapshotTTL); cErr != nil {
		u.logger.Warnf("cache job snapshot %s: %v", jobID, cErr)
	}
	return job, nil
}

func (u *jobUC) ListJobs(ctx context.Context, pq *utils.Pagination) (*models.JobList, error) {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		u.logger.Errorf("ListJobs - GetUserFromCtx: %v", err)
		return nil, err
	}
	if pq == nil {
		pq = &utils.Pagination{Page: 1}
	}
	list, err := u.jobRepo.GetJobs(ctx, user.UserID, pq)
	if err != nil {
		u.logger.Errorf("ListJobs - repo.GetJobs: %v", err)
		return nil, fmt.Errorf("failed to fetch jobs: %v", err)
	}
	return list, nil
}

func (u *jobUC) DeleteJob(ctx context.Context, jobID uuid.UUID) error {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return err
	}
	if err = u.jobRepo.DeleteJob(ctx, user.UserID, jobID); err != nil {
		u.logger.Errorf("DeleteJob - repo.DeleteJob: %v", err)
		return err
	}
	return nil
}

// Dispatch claims the processing lock and hands the uploaded object to the
// external worker. The redis SetNX is a fast duplicate guard; the SQL
// compare-and-set on the job row is the authoritative one.
func (u *jobUC) Dispatch(ctx context.Context, jobID uuid.UUID) (*models.JobRecord, error) {
	job, err := u.getOwnedJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusUploaded {
		if job.Status.IsTerminal() {
			return nil, jobs.ErrTerminalState
		}
		if job.ProcessingLockID != nil {
			return nil, jobs.ErrAlreadyClaimed
		}
		return nil, jobs.ErrInvalidTransition
	}

	lockID := uuid.New()
	claimed, err := u.redisRepo.TryClaim(ctx, jobID, lockID, u.cfg.Worker.LockTTL)
	if err != nil {
		u.logger.Warnf("Dispatch - redis claim unavailable for job %s: %v", jobID, err)
	} else if !claimed {
		return nil, jobs.ErrAlreadyClaimed
	}

	if err = u.jobRepo.AcquireLock(ctx, jobID, lockID); err != nil {
		if rErr := u.redisRepo.ReleaseClaim(ctx, jobID, lockID); rErr != nil {
			u.logger.Warnf("Dispatch - release redis claim: %v", rErr)
		}
		return nil, err
	}

	job, err = u.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	taskID, err := u.dispatcher.Submit(ctx, job, nil)
	if err != nil {
		u.logger.Errorf("Dispatch - worker submit failed for job %s: %v", jobID, err)
		if fErr := u.jobRepo.MarkFailed(ctx, jobID, "dispatch", err.Error()); fErr != nil {
			u.logger.Errorf("Dispatch - MarkFailed: %v", fErr)
		}
		if rErr := u.jobRepo.ReleaseLock(ctx, jobID, lockID); rErr != nil {
			u.logger.Errorf("Dispatch - ReleaseLock: %v", rErr)
		}
		if rErr := u.redisRepo.ReleaseClaim(ctx, jobID, lockID); rErr != nil {
			u.logger.Warnf("Dispatch - release redis claim: %v", rErr)
		}
		return nil, fmt.Errorf("failed to dispatch job: %v", err)
	}

	if err = u.jobRepo.SetExternalTask(ctx, jobID, taskID); err != nil {
		u.logger.Errorf("Dispatch - SetExternalTask: %v", err)
	}

	job, err = u.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	u.publish(ctx, job)
	u.logger.Infof("job %s dispatched, external task %s", jobID, taskID)
	return job, nil
}

func (u *jobUC) CancelJob(ctx context.Context, jobID uuid.UUID) error {
	job, err := u.getOwnedJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return jobs.ErrTerminalState
	}

	// Mark terminal first so no webhook can resurrect the job, then clean up
	// the upload and notify the worker.
	if err = u.jobRepo.MarkCancelled(ctx, jobID); err != nil {
		u.logger.Errorf("CancelJob - MarkCancelled: %v", err)
		return err
	}

	if err = u.aborter.AbortActiveSessionForJob(ctx, jobID); err != nil {
		u.logger.Warnf("CancelJob - abort upload session for job %s: %v", jobID, err)
	}

	if job.ExternalTaskID != "" {
		if err = u.dispatcher.Stop(ctx, job); err != nil {
			u.logger.Warnf("CancelJob - worker stop notify for job %s: %v", jobID, err)
		}
	}

	if updated, gErr := u.jobRepo.GetJobByID(ctx, jobID); gErr == nil {
		u.publish(ctx, updated)
	}
	return nil
}

// RetryJob starts over with a fresh record. The stalled original is left
// untouched: a possibly-still-running worker keeps writing into a record the
// client has abandoned, never into the new one.
func (u *jobUC) RetryJob(ctx context.Context, jobID uuid.UUID) (*models.JobRecord, error) {
	job, err := u.getOwnedJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	fresh := &models.JobRecord{
		UserID:         job.UserID,
		ProfileID:      job.ProfileID,
		Kind:           job.Kind,
		SourceFileName: job.SourceFileName,
		SourceS3Key:    job.SourceS3Key,
		SourceBucket:   job.SourceBucket,
		AttemptCount:   job.AttemptCount + 1,
	}
	created, err := u.jobRepo.CreateJob(ctx, fresh)
	if err != nil {
		u.logger.Errorf("RetryJob - repo.CreateJob: %v", err)
		return nil, err
	}

	// An already-uploaded source can be re-dispatched without a new upload.
	if job.SourceS3Key != "" && job.Status != models.JobStatusCreated && job.Status != models.JobStatusUploading {
		if err = u.jobRepo.UpdateStatus(ctx, created.JobID, models.JobStatusCreated, models.JobStatusUploaded, "source re-used"); err != nil {
			u.logger.Errorf("RetryJob - UpdateStatus: %v", err)
			return nil, err
		}
		created, err = u.jobRepo.GetJobByID(ctx, created.JobID)
		if err != nil {
			return nil, err
		}
	}
	u.publish(ctx, created)
	return created, nil
}

func (u *jobUC) GetStatus(ctx context.Context, jobID uuid.UUID) (*jobs.JobStatusView, error) {
	job, err := u.getOwnedJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	view := &jobs.JobStatusView{
		Job:     job,
		Monitor: u.monitor.Evaluate(job, time.Now()),
	}
	if job.Status == models.JobStatusReady {
		artifacts, aErr := u.jobRepo.GetArtifacts(ctx, jobID)
		if aErr != nil {
			u.logger.Errorf("GetStatus - GetArtifacts: %v", aErr)
		} else {
			view.Artifacts = artifacts
		}
	}
	return view, nil
}

func (u *jobUC) WatchJob(ctx context.Context, jobID uuid.UUID) (<-chan *models.JobRecord, func(), error) {
	if _, err := u.getOwnedJob(ctx, jobID); err != nil {
		return nil, nil, err
	}
	return u.redisRepo.SubscribeToJob(ctx, jobID)
}

func (u *jobUC) GetArtifacts(ctx context.Context, jobID uuid.UUID) ([]*models.Artifact, error) {
	if _, err := u.getOwnedJob(ctx, jobID); err != nil {
		return nil, err
	}
	return u.jobRepo.GetArtifacts(ctx, jobID)
}

func (u *jobUC) ResetStaleJob(ctx context.Context, jobID uuid.UUID) error {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		return jobs.ErrForbidden
	}
	if err = u.jobRepo.ResetStaleJob(ctx, jobID, u.cfg.Worker.LockTTL); err != nil {
		u.logger.Errorf("ResetStaleJob - repo.ResetStaleJob: %v", err)
		return err
	}
	if job, gErr := u.jobRepo.GetJobByID(ctx, jobID); gErr == nil {
		u.publish(ctx, job)
	}
	return nil
}

func (u *jobUC) publish(ctx context.Context, job *models.JobRecord) {
	if err := u.redisRepo.PublishUpdate(ctx, job); err != nil {
		u.logger.Warnf("publish job update %s: %v", job.JobID, err)
	}
	if err := u.redisRepo.CacheJob(ctx, job, jobs.SnapshotTTL); err != nil {
		u.logger.Warnf("cache job snapshot %s: %v", job.JobID, err)
	}
}
