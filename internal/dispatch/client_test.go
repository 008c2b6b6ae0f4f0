package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/creatorhub/media-orchestrator/internal/config"
	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/pkg/logger"
)

func testConfig(clipEndpoint string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{PublicURL: "https://api.creatorhub.dev"},
		Worker: config.WorkerConfig{
			ClipEndpoint:    clipEndpoint,
			TrailerEndpoint: clipEndpoint,
			CallbackSecret:  "cb-secret",
			DispatchTimeout: 5 * time.Second,
		},
		Logger: config.Logger{Development: true, Level: "error"},
	}
}

func testJob() *models.JobRecord {
	return &models.JobRecord{
		JobID:        uuid.New(),
		Kind:         models.JobKindClip,
		SourceS3Key:  "uploads/abc/stream.mp4",
		SourceBucket: "uploads",
		Status:       models.JobStatusUploaded,
	}
}

func newClient(cfg *config.Config) Client {
	log := logger.NewApiLogger(cfg)
	log.InitLogger()
	return NewWorkerClient(cfg, log)
}

func TestSubmitSendsCallbackContract(t *testing.T) {
	t.Parallel()

	var got models.DispatchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(models.DispatchResponse{Status: "ok", TaskID: "task-42"})
	}))
	defer srv.Close()

	job := testJob()
	taskID, err := newClient(testConfig(srv.URL)).Submit(context.Background(), job, map[string]string{"quality": "high"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if taskID != "task-42" {
		t.Errorf("taskID = %q, want task-42", taskID)
	}
	if got.JobID != job.JobID || got.ObjectKey != job.SourceS3Key || got.ObjectBucket != job.SourceBucket {
		t.Errorf("submission payload does not match job: %+v", got)
	}
	if got.CallbackURL != "https://api.creatorhub.dev/webhooks/clip" {
		t.Errorf("callback URL = %q", got.CallbackURL)
	}
	if got.CallbackSecret != "cb-secret" {
		t.Errorf("callback secret = %q", got.CallbackSecret)
	}
	if got.Params["quality"] != "high" {
		t.Errorf("params not forwarded: %+v", got.Params)
	}
}

func TestSubmitNon2xxIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := newClient(testConfig(srv.URL)).Submit(context.Background(), testJob(), nil); err == nil {
		t.Fatal("expected error on 503 response")
	}
}

func TestSubmitRejectedStatusIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.DispatchResponse{Status: "error", Message: "unsupported codec"})
	}))
	defer srv.Close()

	_, err := newClient(testConfig(srv.URL)).Submit(context.Background(), testJob(), nil)
	if err == nil {
		t.Fatal("expected error when worker rejects the submission")
	}
}

func TestStopPostsTaskID(t *testing.T) {
	t.Parallel()

	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stop" {
			t.Errorf("path = %s, want /stop", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	job := testJob()
	job.ExternalTaskID = "task-42"
	if err := newClient(testConfig(srv.URL)).Stop(context.Background(), job); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got["taskId"] != "task-42" || got["jobId"] != job.JobID.String() {
		t.Errorf("stop payload = %+v", got)
	}
}
