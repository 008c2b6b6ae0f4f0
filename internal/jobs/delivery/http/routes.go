package http

import (
	"github.com/labstack/echo/v4"

	"github.com/creatorhub/media-orchestrator/internal/jobs"
	"github.com/creatorhub/media-orchestrator/internal/middleware"
)

func MapJobRoutes(jobGroup *echo.Group, h jobs.Handler, mw *middleware.MiddlewareManager) {
	jobGroup.Use(mw.AuthJWTMiddleware())
	jobGroup.POST("", h.CreateJob())
	jobGroup.GET("", h.ListJobs())
	jobGroup.GET("/:job_id", h.GetJobByID())
	jobGroup.DELETE("/:job_id", h.DeleteJob())
	jobGroup.POST("/:job_id/dispatch", h.DispatchJob())
	jobGroup.POST("/:job_id/cancel", h.CancelJob())
	jobGroup.POST("/:job_id/retry", h.RetryJob())
	jobGroup.GET("/:job_id/status", h.GetStatus())
	jobGroup.GET("/:job_id/watch", h.WatchJob())
	jobGroup.GET("/:job_id/artifacts", h.GetArtifacts())
	jobGroup.POST("/:job_id/reset", h.ResetStaleJob(), mw.AdminMiddleware())
}
