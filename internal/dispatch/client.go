package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/creatorhub/media-orchestrator/internal/config"
	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/pkg/logger"
)

type workerClient struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     logger.Logger
}

func NewWorkerClient(cfg *config.Config, logger logger.Logger) Client {
	return &workerClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Worker.DispatchTimeout,
		},
		logger: logger,
	}
}

func (c *workerClient) endpointFor(kind models.JobKind) string {
	if kind == models.JobKindTrailer {
		return c.cfg.Worker.TrailerEndpoint
	}
	return c.cfg.Worker.ClipEndpoint
}

func (c *workerClient) Submit(ctx context.Context, job *models.JobRecord, params map[string]string) (string, error) {
	reqBody := &models.DispatchRequest{
		JobID:          job.JobID,
		Kind:           job.Kind,
		ObjectKey:      job.SourceS3Key,
		ObjectBucket:   job.SourceBucket,
		Params:         params,
		CallbackURL:    fmt.Sprintf("%s/webhooks/%s", c.cfg.Server.PublicURL, job.Kind),
		CallbackSecret: c.cfg.Worker.CallbackSecret,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "dispatch.Submit.Marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointFor(job.Kind), bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "dispatch.Submit.NewRequest")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "dispatch.Submit.Do")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Errorf("worker returned status %d", resp.StatusCode)
	}

	var out models.DispatchResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "dispatch.Submit.Decode")
	}
	if out.Status != "ok" {
		return "", errors.Errorf("worker rejected submission: %s", out.Message)
	}
	return out.TaskID, nil
}

// Stop is best effort: cancellation must not block on the worker, so any
// error here is logged and swallowed by the caller.
func (c *workerClient) Stop(ctx context.Context, job *models.JobRecord) error {
	stopURL := fmt.Sprintf("%s/stop", c.endpointFor(job.Kind))
	payload, err := json.Marshal(map[string]string{
		"jobId":  job.JobID.String(),
		"taskId": job.ExternalTaskID,
	})
	if err != nil {
		return errors.Wrap(err, "dispatch.Stop.Marshal")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, stopURL, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "dispatch.Stop.NewRequest")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "dispatch.Stop.Do")
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("worker stop returned status %d", resp.StatusCode)
	}
	return nil
}
