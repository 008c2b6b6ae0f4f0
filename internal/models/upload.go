package models

import (
	"time"

	"github.com/google/uuid"
)

type UploadStatus string

const (
	UploadStatusActive    UploadStatus = "ACTIVE"
	UploadStatusPaused    UploadStatus = "PAUSED"
	UploadStatusCompleted UploadStatus = "COMPLETED"
	UploadStatusAborted   UploadStatus = "ABORTED"
)

// UploadSession tracks one resumable multipart upload, 1:1 with a JobRecord.
type UploadSession struct {
	SessionID     uuid.UUID    `json:"session_id" db:"session_id"`
	JobID         uuid.UUID    `json:"job_id" db:"job_id" validate:"required"`
	S3Key         string       `json:"s3_key" db:"s3_key" validate:"required,lte=512"`
	S3Bucket      string       `json:"s3_bucket" db:"s3_bucket" validate:"required,lte=255"`
	UploadID      string       `json:"upload_id" db:"upload_id" validate:"required"`
	ContentType   string       `json:"content_type" db:"content_type" validate:"required,lte=128"`
	TotalBytes    int64        `json:"total_bytes" db:"total_bytes" validate:"required,gt=0"`
	PartSize      int64        `json:"part_size" db:"part_size"`
	TotalParts    int          `json:"total_parts" db:"total_parts"`
	BytesUploaded int64        `json:"bytes_uploaded" db:"bytes_uploaded"`
	Status        UploadStatus `json:"status" db:"status"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// UploadPart records one completed part. ETag is stored byte-for-byte as
// returned by the store; S3 rejects the finalize call if quoting or case is
// altered.
type UploadPart struct {
	SessionID  uuid.UUID `json:"session_id" db:"session_id"`
	PartNumber int       `json:"part_number" db:"part_number" validate:"required,gte=1"`
	ETag       string    `json:"etag" db:"etag" validate:"required"`
	Size       int64     `json:"size" db:"size"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

type UploadCreateInput struct {
	JobID       uuid.UUID `json:"job_id" validate:"required"`
	TotalBytes  int64     `json:"total_bytes" validate:"required,gt=0"`
	ContentType string    `json:"content_type" validate:"required,lte=128"`
}

type UploadCreateOutput struct {
	SessionID  uuid.UUID `json:"session_id"`
	UploadID   string    `json:"upload_id"`
	S3Key      string    `json:"s3_key"`
	PartSize   int64     `json:"part_size"`
	TotalParts int       `json:"total_parts"`
}

type RecordPartInput struct {
	PartNumber int    `json:"part_number" validate:"required,gte=1"`
	ETag       string `json:"etag" validate:"required"`
	Size       int64  `json:"size" validate:"omitempty,gte=0"`
}
