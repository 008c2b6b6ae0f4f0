package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/creatorhub/media-orchestrator/internal/config"
	"github.com/creatorhub/media-orchestrator/internal/jobs/mock"
	"github.com/creatorhub/media-orchestrator/internal/models"
	webhooksUC "github.com/creatorhub/media-orchestrator/internal/webhooks/usecase"
	"github.com/creatorhub/media-orchestrator/pkg/logger"
)

const testSecret = "wh-secret-for-tests"

func newTestHandler(t *testing.T) (echo.HandlerFunc, *mock.MemJobRepo) {
	t.Helper()
	cfg := &config.Config{
		Worker: config.WorkerConfig{CallbackSecret: testSecret},
		S3:     config.S3Config{OutputBucket: "outputs"},
		Logger: config.Logger{Development: true, Level: "error"},
	}
	log := logger.NewApiLogger(cfg)
	log.InitLogger()
	jobRepo := mock.NewMemJobRepo()
	uc := webhooksUC.NewWebhookUseCase(cfg, jobRepo, mock.NewMemRedisRepo(), log)
	return NewWebhookHandler(cfg, uc, log).HandleEvent(), jobRepo
}

func postEvent(t *testing.T, handler echo.HandlerFunc, secret, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clip", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if secret != "" {
		req.Header.Set(secretHeader, secret)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/webhooks/:pipeline")
	c.SetParamNames("pipeline")
	c.SetParamValues("clip")
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestHandleEventRejectsBadSecret(t *testing.T) {
	t.Parallel()

	handler, jobRepo := newTestHandler(t)
	job := jobRepo.Seed(&models.JobRecord{
		Kind:           models.JobKindClip,
		SourceFileName: "stream.mp4",
		Status:         models.JobStatusProcessing,
	})

	body := `{"jobId":"` + job.JobID.String() + `","eventType":"progress","progress":60}`

	for _, secret := range []string{"", "wrong-secret"} {
		rec := postEvent(t, handler, secret, body)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("secret %q: status = %d, want 401", secret, rec.Code)
		}
	}

	// Rejected deliveries must not touch the record.
	got, _ := jobRepo.GetJobByID(context.Background(), job.JobID)
	if got.Progress != 0 {
		t.Errorf("unauthenticated webhook mutated progress to %d", got.Progress)
	}
}

func TestHandleEventAppliesProgress(t *testing.T) {
	t.Parallel()

	handler, jobRepo := newTestHandler(t)
	job := jobRepo.Seed(&models.JobRecord{
		Kind:           models.JobKindClip,
		SourceFileName: "stream.mp4",
		Status:         models.JobStatusProcessing,
	})

	body := `{"jobId":"` + job.JobID.String() + `","eventType":"progress","progress":60,"currentStep":"rendering"}`
	rec := postEvent(t, handler, testSecret, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	got, _ := jobRepo.GetJobByID(context.Background(), job.JobID)
	if got.Progress != 60 || got.CurrentStep != "rendering" {
		t.Errorf("progress/step = %d/%q, want 60/rendering", got.Progress, got.CurrentStep)
	}
}

func TestHandleEventUnknownJobReturnsOK(t *testing.T) {
	t.Parallel()

	handler, _ := newTestHandler(t)
	body := `{"jobId":"1b4e28ba-2fa1-11d2-883f-0016d3cca427","eventType":"progress","progress":10}`
	rec := postEvent(t, handler, testSecret, body)
	if rec.Code != http.StatusOK {
		t.Errorf("unknown job status = %d, want 200 so the worker stops retrying", rec.Code)
	}
}

func TestHandleEventMalformedBody(t *testing.T) {
	t.Parallel()

	handler, _ := newTestHandler(t)
	rec := postEvent(t, handler, testSecret, `{"jobId": not-json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
