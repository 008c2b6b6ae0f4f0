package http

import (
	"github.com/labstack/echo/v4"

	"github.com/creatorhub/media-orchestrator/internal/middleware"
	"github.com/creatorhub/media-orchestrator/internal/uploads"
)

func MapUploadRoutes(uploadGroup *echo.Group, h uploads.Handler, mw *middleware.MiddlewareManager) {
	uploadGroup.Use(mw.AuthJWTMiddleware())
	uploadGroup.POST("/sessions", h.CreateSession())
	uploadGroup.GET("/sessions/:session_id", h.GetSession())
	uploadGroup.POST("/sessions/:session_id/parts/:part_number/presign", h.PresignPart())
	uploadGroup.PUT("/sessions/:session_id/parts", h.RecordPart())
	uploadGroup.POST("/sessions/:session_id/complete", h.CompleteSession())
	uploadGroup.POST("/sessions/:session_id/pause", h.PauseSession())
	uploadGroup.POST("/sessions/:session_id/resume", h.ResumeSession())
	uploadGroup.POST("/sessions/:session_id/cancel", h.CancelSession())
}
