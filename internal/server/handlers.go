package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/creatorhub/media-orchestrator/internal/dispatch"
	jobsHttp "github.com/creatorhub/media-orchestrator/internal/jobs/delivery/http"
	jobsRepository "github.com/creatorhub/media-orchestrator/internal/jobs/repository"
	jobsUsecase "github.com/creatorhub/media-orchestrator/internal/jobs/usecase"
	"github.com/creatorhub/media-orchestrator/internal/middleware"
	uploadsHttp "github.com/creatorhub/media-orchestrator/internal/uploads/delivery/http"
	uploadsRepository "github.com/creatorhub/media-orchestrator/internal/uploads/repository"
	uploadsUsecase "github.com/creatorhub/media-orchestrator/internal/uploads/usecase"
	webhooksHttp "github.com/creatorhub/media-orchestrator/internal/webhooks/delivery/http"
	webhooksUsecase "github.com/creatorhub/media-orchestrator/internal/webhooks/usecase"
	"github.com/creatorhub/media-orchestrator/pkg/utils"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	jobRepo := jobsRepository.NewJobRepo(s.db)
	jobRedisRepo := jobsRepository.NewJobRedisRepo(s.redisClient)
	uploadRepo := uploadsRepository.NewUploadRepo(s.db)
	uploadAWSRepo := uploadsRepository.NewAwsRepository(s.s3Client, s.preSignClient, s.cfg.Upload.PresignExpiry)

	workerClient := dispatch.NewWorkerClient(s.cfg, s.logger)

	uploadUC := uploadsUsecase.NewUploadUseCase(s.cfg, uploadRepo, uploadAWSRepo, jobRepo, jobRedisRepo, s.logger)
	jobUC := jobsUsecase.NewJobUseCase(s.cfg, jobRepo, jobRedisRepo, workerClient, uploadUC, s.logger)
	webhookUC := webhooksUsecase.NewWebhookUseCase(s.cfg, jobRepo, jobRedisRepo, s.logger)

	jobHandlers := jobsHttp.NewJobHandler(jobUC)
	uploadHandlers := uploadsHttp.NewUploadHandler(uploadUC)
	webhookHandlers := webhooksHttp.NewWebhookHandler(s.cfg, webhookUC, s.logger)

	mw := middleware.NewMiddlewareManager(s.cfg, []string{"*"}, s.logger)

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")
	jobGroup := v1.Group("/jobs")
	uploadGroup := v1.Group("/uploads")
	webhookGroup := e.Group("/webhooks")

	jobsHttp.MapJobRoutes(jobGroup, jobHandlers, mw)
	uploadsHttp.MapUploadRoutes(uploadGroup, uploadHandlers, mw)
	webhooksHttp.MapWebhookRoutes(webhookGroup, webhookHandlers)
	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	return nil
}
