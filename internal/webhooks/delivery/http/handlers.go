package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/creatorhub/media-orchestrator/internal/config"
	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/internal/webhooks"
	"github.com/creatorhub/media-orchestrator/pkg/logger"
)

const secretHeader = "X-Callback-Secret"

type webhookHandler struct {
	cfg       *config.Config
	webhookUC webhooks.UseCase
	logger    logger.Logger
}

func NewWebhookHandler(cfg *config.Config, webhookUC webhooks.UseCase, logger logger.Logger) webhooks.Handler {
	return &webhookHandler{
		cfg:       cfg,
		webhookUC: webhookUC,
		logger:    logger,
	}
}

// HandleEvent accepts worker callbacks. 401 is reserved for authentication
// failure; everything the usecase absorbs (unknown job, stale progress,
// terminal job) returns 2xx so the worker stops retrying.
func (h *webhookHandler) HandleEvent() echo.HandlerFunc {
	return func(c echo.Context) error {
		secret := c.Request().Header.Get(secretHeader)
		if subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.Worker.CallbackSecret)) != 1 {
			h.logger.Warnf("webhook auth failure from %s", c.Request().RemoteAddr)
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		event := &models.WorkerEvent{}
		if err := c.Bind(event); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}

		if err := h.webhookUC.ApplyEvent(c.Request().Context(), event); err != nil {
			h.logger.Errorf("webhook apply failed for job %s: %v", event.JobID, err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "applied"})
	}
}
