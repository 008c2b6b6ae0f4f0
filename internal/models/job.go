package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusCreated   JobStatus = "created"
	JobStatusUploading JobStatus = "uploading"
	JobStatusUploaded  JobStatus = "uploaded"
	JobStatusClaimed   JobStatus = "claimed"
	JobStatusReady     JobStatus = "ready"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"

	// Processing sub-states. Clip jobs use only "processing"; trailer jobs
	// walk the multi-phase sequence in order.
	JobStatusProcessing   JobStatus = "processing"
	JobStatusProxy        JobStatus = "proxy"
	JobStatusTranscribe   JobStatus = "transcribe"
	JobStatusScenes       JobStatus = "scenes"
	JobStatusAnalyze      JobStatus = "analyze"
	JobStatusPlan         JobStatus = "plan"
	JobStatusRender       JobStatus = "render"
	JobStatusUploadOutput JobStatus = "upload_output"
)

type JobKind string

const (
	JobKindClip    JobKind = "clip"
	JobKindTrailer JobKind = "trailer"
)

// statusRank orders the linear lifecycle. Processing sub-states share a rank
// band between claimed and terminal so a trailer job can only walk forward
// through its phases.
var statusRank = map[JobStatus]int{
	JobStatusCreated:      0,
	JobStatusUploading:    1,
	JobStatusUploaded:     2,
	JobStatusClaimed:      3,
	JobStatusProxy:        4,
	JobStatusTranscribe:   5,
	JobStatusScenes:       6,
	JobStatusAnalyze:      7,
	JobStatusPlan:         8,
	JobStatusRender:       9,
	JobStatusUploadOutput: 10,
	JobStatusProcessing:   10,
	JobStatusReady:        11,
	JobStatusFailed:       11,
	JobStatusCancelled:    11,
}

// JobRecord is the durable state machine row for one media generation request.
type JobRecord struct {
	JobID               uuid.UUID  `json:"job_id" db:"job_id" validate:"omitempty"`
	UserID              uuid.UUID  `json:"user_id" db:"user_id" validate:"omitempty"`
	ProfileID           *uuid.UUID `json:"profile_id,omitempty" db:"profile_id" validate:"omitempty"`
	Kind                JobKind    `json:"kind" db:"kind" validate:"required,oneof=clip trailer"`
	SourceFileName      string     `json:"source_file_name" db:"source_file_name" validate:"required,lte=255"`
	SourceS3Key         string     `json:"source_s3_key" db:"source_s3_key" validate:"omitempty,lte=512"`
	SourceBucket        string     `json:"source_bucket" db:"source_bucket" validate:"omitempty,lte=255"`
	Status              JobStatus  `json:"status" db:"status" validate:"omitempty"`
	Progress            int        `json:"progress" db:"progress" validate:"omitempty,gte=0,lte=100"`
	CurrentStep         string     `json:"current_step" db:"current_step" validate:"omitempty,lte=255"`
	ProcessingLockID    *uuid.UUID `json:"processing_lock_id,omitempty" db:"processing_lock_id"`
	ProcessingStartedAt *time.Time `json:"processing_started_at,omitempty" db:"processing_started_at"`
	ExternalTaskID      string     `json:"external_task_id,omitempty" db:"external_task_id"`
	Error               string     `json:"error,omitempty" db:"error"`
	ErrorStage          string     `json:"error_stage,omitempty" db:"error_stage"`
	AttemptCount        int        `json:"attempt_count" db:"attempt_count"`
	LastProgressAt      *time.Time `json:"last_progress_at,omitempty" db:"last_progress_at"`
	Version             int        `json:"-" db:"version"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// IsTerminal reports whether no further pipeline writes are accepted.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusReady || s == JobStatusFailed || s == JobStatusCancelled
}

// IsProcessing reports whether the status is a worker-owned sub-state.
func (s JobStatus) IsProcessing() bool {
	switch s {
	case JobStatusProcessing, JobStatusProxy, JobStatusTranscribe, JobStatusScenes,
		JobStatusAnalyze, JobStatusPlan, JobStatusRender, JobStatusUploadOutput:
		return true
	}
	return false
}

// CanTransition validates a status move against the lifecycle rules:
// the machine is linear and only moves forward, failed is reachable from any
// non-terminal state, and cancelled from any state before ready.
func (s JobStatus) CanTransition(to JobStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch to {
	case JobStatusFailed:
		return true
	case JobStatusCancelled:
		return true
	case JobStatusReady:
		return s == JobStatusClaimed || s.IsProcessing()
	}
	fromRank, ok := statusRank[s]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

type JobCreateInput struct {
	Kind           JobKind    `json:"kind" validate:"required,oneof=clip trailer"`
	SourceFileName string     `json:"source_file_name" validate:"required,lte=255"`
	ProfileID      *uuid.UUID `json:"profile_id,omitempty" validate:"omitempty"`
}

type JobList struct {
	Jobs       []*JobRecord `json:"jobs"`
	TotalCount int          `json:"total_count"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	HasMore    bool         `json:"has_more"`
}
