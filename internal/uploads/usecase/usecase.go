package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/creatorhub/media-orchestrator/internal/config"
	"github.com/creatorhub/media-orchestrator/internal/jobs"
	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/internal/uploads"
	"github.com/creatorhub/media-orchestrator/pkg/logger"
	"github.com/creatorhub/media-orchestrator/pkg/utils"
)

type uploadUC struct {
	cfg        *config.Config
	uploadRepo uploads.Repository
	awsRepo    uploads.AWSRepository
	jobRepo    jobs.Repository
	redisRepo  jobs.RedisRepository
	logger     logger.Logger
}

func NewUploadUseCase(
	cfg *config.Config,
	uploadRepo uploads.Repository,
	awsRepo uploads.AWSRepository,
	jobRepo jobs.Repository,
	redisRepo jobs.RedisRepository,
	log logger.Logger,
) uploads.UseCase {
	return &uploadUC{
		cfg:        cfg,
		uploadRepo: uploadRepo,
		awsRepo:    awsRepo,
		jobRepo:    jobRepo,
		redisRepo:  redisRepo,
		logger:     log,
	}
}

func (u *uploadUC) CreateSession(ctx context.Context, input *models.UploadCreateInput) (*models.UploadCreateOutput, error) {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		u.logger.Errorf("CreateSession - GetUserFromCtx: %v", err)
		return nil, err
	}
	if err = utils.ValidateStruct(ctx, input); err != nil {
		u.logger.Errorf("CreateSession - ValidateStruct: %v", err)
		return nil, fmt.Errorf("invalid input: %v", err)
	}
	if u.cfg.Upload.MaxUploadBytes > 0 && input.TotalBytes > u.cfg.Upload.MaxUploadBytes {
		return nil, fmt.Errorf("upload exceeds the %d byte limit", u.cfg.Upload.MaxUploadBytes)
	}

	job, err := u.jobRepo.GetJobByID(ctx, input.JobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != user.UserID {
		return nil, jobs.ErrForbidden
	}
	if job.Status != models.JobStatusCreated {
		return nil, uploads.ErrInvalidJob
	}

	partSize := u.cfg.Upload.PartSize
	totalParts := int((input.TotalBytes + partSize - 1) / partSize)

	uploadID, err := u.awsRepo.CreateMultipartUpload(ctx, job.SourceBucket, job.SourceS3Key, input.ContentType)
	if err != nil {
		u.logger.Errorf("CreateSession - CreateMultipartUpload: %v", err)
		return nil, fmt.Errorf("failed to open multipart upload: %v", err)
	}

	session, err := u.uploadRepo.CreateSession(ctx, &models.UploadSession{
		JobID:       job.JobID,
		S3Key:       job.SourceS3Key,
		S3Bucket:    job.SourceBucket,
		UploadID:    uploadID,
		ContentType: input.ContentType,
		TotalBytes:  input.TotalBytes,
		PartSize:    partSize,
		TotalParts:  totalParts,
	})
	if err != nil {
		u.logger.Errorf("CreateSession - repo.CreateSession: %v", err)
		return nil, err
	}

	if err = u.jobRepo.UpdateStatus(ctx, job.JobID, models.JobStatusCreated, models.JobStatusUploading, "uploading source"); err != nil {
		u.logger.Errorf("CreateSession - UpdateStatus: %v", err)
		return nil, err
	}
	u.publishJob(ctx, job.JobID)

	u.logger.Infof("upload session %s opened for job %s (%d parts)", session.SessionID, job.JobID, totalParts)
	return &models.UploadCreateOutput{
		SessionID:  session.SessionID,
		UploadID:   uploadID,
		S3Key:      session.S3Key,
		PartSize:   partSize,
		TotalParts: totalParts,
	}, nil
}

// getOwnedSession resolves a session and checks the owning job belongs to the
// caller.
func (u *uploadUC) getOwnedSession(ctx context.Context, sessionID uuid.UUID) (*models.UploadSession, error) {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	session, err := u.uploadRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	job, err := u.jobRepo.GetJobByID(ctx, session.JobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != user.UserID && !user.IsAdmin() {
		return nil, jobs.ErrForbidden
	}
	return session, nil
}

func (u *uploadUC) GetSession(ctx context.Context, sessionID uuid.UUID) (*uploads.ResumeOutput, error) {
	session, err := u.getOwnedSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	parts, err := u.uploadRepo.GetParts(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &uploads.ResumeOutput{Session: session, Parts: parts}, nil
}

func (u *uploadUC) PresignPart(ctx context.Context, sessionID uuid.UUID, partNumber int) (string, error) {
	session, err := u.getOwnedSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	switch session.Status {
	case models.UploadStatusActive:
	case models.UploadStatusPaused:
		return "", uploads.ErrSessionPaused
	default:
		return "", uploads.ErrSessionClosed
	}
	if partNumber < 1 || partNumber > session.TotalParts {
		return "", uploads.ErrInvalidPart
	}
	url, err := u.awsRepo.PresignUploadPart(ctx, session.S3Bucket, session.S3Key, session.UploadID, partNumber)
	if err != nil {
		u.logger.Errorf("PresignPart - PresignUploadPart: %v", err)
		return "", fmt.Errorf("failed to presign part: %v", err)
	}
	return url, nil
}

// RecordPart stores the ETag the store returned for a part. Re-recording the
// same part number replaces the entry, which makes part retries safe.
func (u *uploadUC) RecordPart(ctx context.Context, sessionID uuid.UUID, input *models.RecordPartInput) error {
	session, err := u.getOwnedSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err = utils.ValidateStruct(ctx, input); err != nil {
		return fmt.Errorf("invalid input: %v", err)
	}
	if session.Status != models.UploadStatusActive && session.Status != models.UploadStatusPaused {
		return uploads.ErrSessionClosed
	}
	if input.PartNumber < 1 || input.PartNumber > session.TotalParts {
		return uploads.ErrInvalidPart
	}
	return u.uploadRepo.UpsertPart(ctx, &models.UploadPart{
		SessionID:  sessionID,
		PartNumber: input.PartNumber,
		ETag:       input.ETag,
		Size:       input.Size,
	})
}

func (u *uploadUC) CompleteSession(ctx context.Context, sessionID uuid.UUID) (string, error) {
	session, err := u.getOwnedSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session.Status != models.UploadStatusActive && session.Status != models.UploadStatusPaused {
		return "", uploads.ErrSessionClosed
	}

	parts, err := u.uploadRepo.GetParts(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if err = validateContiguous(parts, session.TotalParts); err != nil {
		return "", err
	}

	if err = u.awsRepo.CompleteMultipartUpload(ctx, session.S3Bucket, session.S3Key, session.UploadID, parts); err != nil {
		u.logger.Errorf("CompleteSession - store finalize for session %s: %v", sessionID, err)
		return "", uploads.ErrStoreFinalization
	}

	if err = u.uploadRepo.UpdateSessionStatus(ctx, sessionID, session.Status, models.UploadStatusCompleted); err != nil {
		u.logger.Errorf("CompleteSession - UpdateSessionStatus: %v", err)
		return "", err
	}
	if err = u.jobRepo.UpdateStatus(ctx, session.JobID, models.JobStatusUploading, models.JobStatusUploaded, "source uploaded"); err != nil {
		u.logger.Errorf("CompleteSession - job UpdateStatus: %v", err)
		return "", err
	}
	u.publishJob(ctx, session.JobID)

	u.logger.Infof("upload session %s finalized, object %s", sessionID, session.S3Key)
	return session.S3Key, nil
}

func (u *uploadUC) PauseSession(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := u.getOwnedSession(ctx, sessionID); err != nil {
		return err
	}
	return u.uploadRepo.UpdateSessionStatus(ctx, sessionID, models.UploadStatusActive, models.UploadStatusPaused)
}

func (u *uploadUC) ResumeSession(ctx context.Context, sessionID uuid.UUID) (*uploads.ResumeOutput, error) {
	session, err := u.getOwnedSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.UploadStatusPaused {
		if err = u.uploadRepo.UpdateSessionStatus(ctx, sessionID, models.UploadStatusPaused, models.UploadStatusActive); err != nil {
			return nil, err
		}
		session.Status = models.UploadStatusActive
	} else if session.Status != models.UploadStatusActive {
		return nil, uploads.ErrSessionClosed
	}
	parts, err := u.uploadRepo.GetParts(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &uploads.ResumeOutput{Session: session, Parts: parts}, nil
}

func (u *uploadUC) CancelSession(ctx context.Context, sessionID uuid.UUID) error {
	session, err := u.getOwnedSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.UploadStatusActive && session.Status != models.UploadStatusPaused {
		return uploads.ErrSessionClosed
	}
	if err = u.abort(ctx, session); err != nil {
		return err
	}
	// The owning job must not be left silently stuck.
	if err = u.jobRepo.MarkCancelled(ctx, session.JobID); err != nil && !errors.Is(err, jobs.ErrTerminalState) {
		u.logger.Errorf("CancelSession - MarkCancelled: %v", err)
		return err
	}
	u.publishJob(ctx, session.JobID)
	return nil
}

func (u *uploadUC) AbortActiveSessionForJob(ctx context.Context, jobID uuid.UUID) error {
	session, err := u.uploadRepo.GetActiveSessionByJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, uploads.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	return u.abort(ctx, session)
}

func (u *uploadUC) abort(ctx context.Context, session *models.UploadSession) error {
	if err := u.awsRepo.AbortMultipartUpload(ctx, session.S3Bucket, session.S3Key, session.UploadID); err != nil {
		u.logger.Errorf("abort - AbortMultipartUpload for session %s: %v", session.SessionID, err)
		return err
	}
	if err := u.uploadRepo.UpdateSessionStatus(ctx, session.SessionID, session.Status, models.UploadStatusAborted); err != nil {
		u.logger.Errorf("abort - UpdateSessionStatus: %v", err)
		return err
	}
	u.logger.Infof("upload session %s aborted", session.SessionID)
	return nil
}

// publishJob pushes the job's new state to watchers and refreshes the
// snapshot cache after an upload-driven transition.
func (u *uploadUC) publishJob(ctx context.Context, jobID uuid.UUID) {
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

// validateContiguous checks parts cover 1..totalParts exactly once.
func validateContiguous(parts []*models.UploadPart, totalParts int) error {
	if len(parts) != totalParts {
		return uploads.ErrIncompleteUpload
	}
	seen := make(map[int]bool, len(parts))
	for _, part := range parts {
		if part.PartNumber < 1 || part.PartNumber > totalParts || seen[part.PartNumber] {
			return uploads.ErrIncompleteUpload
		}
		seen[part.PartNumber] = true
	}
	return nil
}
