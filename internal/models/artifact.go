package models

import (
	"time"

	"github.com/google/uuid"
)

type ArtifactKind string

const (
	ArtifactKindClip    ArtifactKind = "clip"
	ArtifactKindMeme    ArtifactKind = "meme"
	ArtifactKindGif     ArtifactKind = "gif"
	ArtifactKindTrailer ArtifactKind = "trailer"
)

// Artifact is one generated output, written by the terminal-success webhook.
type Artifact struct {
	ArtifactID uuid.UUID    `json:"artifact_id" db:"artifact_id"`
	JobID      uuid.UUID    `json:"job_id" db:"job_id"`
	Kind       ArtifactKind `json:"kind" db:"kind"`
	S3Key      string       `json:"s3_key" db:"s3_key"`
	S3Bucket   string       `json:"s3_bucket" db:"s3_bucket"`
	Title      string       `json:"title,omitempty" db:"title"`
	Duration   float64      `json:"duration,omitempty" db:"duration"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}
