package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/creatorhub/media-orchestrator/internal/jobs"
	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/pkg/utils"
)

type jobRepo struct {
	db *sqlx.DB
}

func NewJobRepo(db *sqlx.DB) jobs.Repository {
	return &jobRepo{
		db: db,
	}
}

func (r *jobRepo) CreateJob(ctx context.Context, job *models.JobRecord) (*models.JobRecord, error) {
	created := &models.JobRecord{}
	if err := r.db.QueryRowxContext(
		ctx,
		createJobQuery,
		job.UserID,
		job.ProfileID,
		job.Kind,
		job.SourceFileName,
		job.SourceS3Key,
		job.SourceBucket,
		models.JobStatusCreated,
		job.AttemptCount,
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return created, nil
}

func (r *jobRepo) GetJobByID(ctx context.Context, jobID uuid.UUID) (*models.JobRecord, error) {
	job := &models.JobRecord{}
	if err := r.db.QueryRowxContext(ctx, getJobByIDQuery, jobID).StructScan(job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, jobs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job by id: %w", err)
	}
	return job, nil
}

func (r *jobRepo) GetJobs(ctx context.Context, userID uuid.UUID, pq *utils.Pagination) (*models.JobList, error) {
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, getTotalJobsByUserIDQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to get total jobs count: %w", err)
	}
	if totalCount == 0 {
		return &models.JobList{
			Jobs:     make([]*models.JobRecord, 0),
			Page:     pq.GetPage(),
			PageSize: pq.GetSize(),
		}, nil
	}
	rows, err := r.db.QueryxContext(ctx, getJobsByUserIDQuery, userID, pq.GetOffset(), pq.GetLimit())
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs by user id: %w", err)
	}
	defer rows.Close()
	jobList := make([]*models.JobRecord, 0, pq.GetSize())
	for rows.Next() {
		var job models.JobRecord
		if err = rows.StructScan(&job); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobList = append(jobList, &job)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan jobs: %w", err)
	}
	return &models.JobList{
		Jobs:       jobList,
		TotalCount: totalCount,
		Page:       pq.GetPage(),
		PageSize:   pq.GetSize(),
		HasMore:    utils.GetHasMore(pq.GetPage(), totalCount, pq.GetSize()),
	}, nil
}

func (r *jobRepo) DeleteJob(ctx context.Context, userID, jobID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, deleteJobQuery, jobID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return jobs.ErrNotFound
	}
	return nil
}

func (r *jobRepo) UpdateStatus(ctx context.Context, jobID uuid.UUID, from, to models.JobStatus, step string) error {
	res, err := r.db.ExecContext(ctx, updateStatusQuery, jobID, from, to, step)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return jobs.ErrInvalidTransition
	}
	return nil
}

func (r *jobRepo) ApplyProgress(ctx context.Context, jobID uuid.UUID, progress int, step string) (bool, error) {
	res, err := r.db.ExecContext(ctx, applyProgressQuery, jobID, progress, step)
	if err != nil {
		return false, fmt.Errorf("failed to apply progress: %w", err)
	}
	count, _ := res.RowsAffected()
	return count > 0, nil
}

// MarkReadyWithArtifacts flips the job to ready and inserts its artifact
// rows in one transaction. The guarded UPDATE runs first: when the job went
// terminal in the meantime, nothing is written at all.
func (r *jobRepo) MarkReadyWithArtifacts(ctx context.Context, jobID uuid.UUID, artifacts []*models.Artifact) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ready tx: %w", err)
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, markReadyQuery, jobID)
	if err != nil {
		return fmt.Errorf("failed to mark job ready: %w", err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return jobs.ErrTerminalState
	}
	for _, a := range artifacts {
		if _, err = tx.ExecContext(
			ctx,
			insertArtifactQuery,
			a.JobID,
			a.Kind,
			a.S3Key,
			a.S3Bucket,
			a.Title,
			a.Duration,
		); err != nil {
			return fmt.Errorf("failed to insert artifact: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ready tx: %w", err)
	}
	return nil
}

func (r *jobRepo) MarkFailed(ctx context.Context, jobID uuid.UUID, stage, message string) error {
	res, err := r.db.ExecContext(ctx, markFailedQuery, jobID, stage, message)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return jobs.ErrTerminalState
	}
	return nil
}

func (r *jobRepo) MarkCancelled(ctx context.Context, jobID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, markCancelledQuery, jobID)
	if err != nil {
		return fmt.Errorf("failed to mark job cancelled: %w", err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return jobs.ErrTerminalState
	}
	return nil
}

func (r *jobRepo) AcquireLock(ctx context.Context, jobID, lockID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, acquireLockQuery, jobID, lockID)
	if err != nil {
		return fmt.Errorf("failed to acquire processing lock: %w", err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return jobs.ErrAlreadyClaimed
	}
	return nil
}

func (r *jobRepo) ReleaseLock(ctx context.Context, jobID, lockID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, releaseLockQuery, jobID, lockID); err != nil {
		return fmt.Errorf("failed to release processing lock: %w", err)
	}
	return nil
}

func (r *jobRepo) SetExternalTask(ctx context.Context, jobID uuid.UUID, taskID string) error {
	if _, err := r.db.ExecContext(ctx, setExternalTaskQuery, jobID, taskID); err != nil {
		return fmt.Errorf("failed to set external task id: %w", err)
	}
	return nil
}

func (r *jobRepo) ResetStaleJob(ctx context.Context, jobID uuid.UUID, ttl time.Duration) error {
	res, err := r.db.ExecContext(ctx, resetStaleJobQuery, jobID, ttl.String())
	if err != nil {
		return fmt.Errorf("failed to reset stale job: %w", err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return jobs.ErrLockActive
	}
	return nil
}

func (r *jobRepo) GetArtifacts(ctx context.Context, jobID uuid.UUID) ([]*models.Artifact, error) {
	rows, err := r.db.QueryxContext(ctx, getArtifactsQuery, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get artifacts: %w", err)
	}
	defer rows.Close()
	artifacts := make([]*models.Artifact, 0)
	for rows.Next() {
		var a models.Artifact
		if err = rows.StructScan(&a); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan artifacts: %w", err)
	}
	return artifacts, nil
}
