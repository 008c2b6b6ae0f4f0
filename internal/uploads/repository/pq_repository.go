package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/internal/uploads"
)

type uploadRepo struct {
	db *sqlx.DB
}

func NewUploadRepo(db *sqlx.DB) uploads.Repository {
	return &uploadRepo{
		db: db,
	}
}

func (r *uploadRepo) CreateSession(ctx context.Context, session *models.UploadSession) (*models.UploadSession, error) {
	created := &models.UploadSession{}
	if err := r.db.QueryRowxContext(
		ctx,
		createSessionQuery,
		session.JobID,
		session.S3Key,
		session.S3Bucket,
		session.UploadID,
		session.ContentType,
		session.TotalBytes,
		session.PartSize,
		session.TotalParts,
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create upload session: %w", err)
	}
	return created, nil
}

func (r *uploadRepo) GetSessionByID(ctx context.Context, sessionID uuid.UUID) (*models.UploadSession, error) {
	session := &models.UploadSession{}
	if err := r.db.QueryRowxContext(ctx, getSessionByIDQuery, sessionID).StructScan(session); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, uploads.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get upload session: %w", err)
	}
	return session, nil
}

func (r *uploadRepo) GetActiveSessionByJobID(ctx context.Context, jobID uuid.UUID) (*models.UploadSession, error) {
	session := &models.UploadSession{}
	if err := r.db.QueryRowxContext(ctx, getActiveSessionByJobIDQuery, jobID).StructScan(session); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, uploads.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get active session by job id: %w", err)
	}
	return session, nil
}

func (r *uploadRepo) UpdateSessionStatus(ctx context.Context, sessionID uuid.UUID, from, to models.UploadStatus) error {
	res, err := r.db.ExecContext(ctx, updateSessionStatusQuery, sessionID, from, to)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return uploads.ErrSessionClosed
	}
	return nil
}

func (r *uploadRepo) UpsertPart(ctx context.Context, part *models.UploadPart) error {
	if _, err := r.db.ExecContext(
		ctx,
		upsertPartQuery,
		part.SessionID,
		part.PartNumber,
		part.ETag,
		part.Size,
	); err != nil {
		return fmt.Errorf("failed to record part: %w", err)
	}
	return nil
}

func (r *uploadRepo) GetParts(ctx context.Context, sessionID uuid.UUID) ([]*models.UploadPart, error) {
	rows, err := r.db.QueryxContext(ctx, getPartsQuery, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get parts: %w", err)
	}
	defer rows.Close()
	parts := make([]*models.UploadPart, 0)
	for rows.Next() {
		var part models.UploadPart
		if err = rows.StructScan(&part); err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		parts = append(parts, &part)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan parts: %w", err)
	}
	return parts, nil
}
