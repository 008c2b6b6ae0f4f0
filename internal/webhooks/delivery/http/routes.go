package http

import (
	"github.com/labstack/echo/v4"

	"github.com/creatorhub/media-orchestrator/internal/webhooks"
)

func MapWebhookRoutes(webhookGroup *echo.Group, h webhooks.Handler) {
	webhookGroup.POST("/:pipeline", h.HandleEvent())
}
