package models

import "github.com/google/uuid"

// DispatchRequest is the submission payload sent to the external processing
// worker. The callback pair lets the worker report back through the webhook
// endpoint.
type DispatchRequest struct {
	JobID          uuid.UUID         `json:"jobId"`
	Kind           JobKind           `json:"kind"`
	ObjectKey      string            `json:"objectKey"`
	ObjectBucket   string            `json:"objectBucket"`
	Params         map[string]string `json:"params,omitempty"`
	CallbackURL    string            `json:"callbackUrl"`
	CallbackSecret string            `json:"callbackSecret"`
}

type DispatchResponse struct {
	Status  string `json:"status"`
	TaskID  string `json:"taskId,omitempty"`
	Message string `json:"message,omitempty"`
}

type WorkerEventType string

const (
	WorkerEventProgress  WorkerEventType = "progress"
	WorkerEventCompleted WorkerEventType = "completed"
	WorkerEventFailed    WorkerEventType = "failed"
)

// WorkerArtifact is the artifact shape reported by the worker on completion.
type WorkerArtifact struct {
	Kind     ArtifactKind `json:"kind"`
	S3Key    string       `json:"s3_key" validate:"required"`
	S3Bucket string       `json:"s3_bucket"`
	Title    string       `json:"title,omitempty"`
	Duration float64      `json:"duration,omitempty"`
}

// WorkerEvent is one webhook delivery. Delivery is at-least-once with no
// ordering guarantee, so applying an event must be idempotent.
type WorkerEvent struct {
	JobID       uuid.UUID        `json:"jobId" validate:"required"`
	EventType   WorkerEventType  `json:"eventType" validate:"required,oneof=progress completed failed"`
	Progress    int              `json:"progress,omitempty" validate:"omitempty,gte=0,lte=100"`
	CurrentStep string           `json:"currentStep,omitempty"`
	Status      JobStatus        `json:"status,omitempty"`
	Artifacts   []WorkerArtifact `json:"artifacts,omitempty" validate:"omitempty,dive"`
	Error       string           `json:"error,omitempty"`
	ErrorStage  string           `json:"errorStage,omitempty"`
}
