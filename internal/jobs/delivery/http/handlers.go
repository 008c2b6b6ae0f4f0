package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/creatorhub/media-orchestrator/internal/jobs"
	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/pkg/utils"
)

type jobHandler struct {
	jobUC jobs.UseCase
}

func NewJobHandler(jobUC jobs.UseCase) jobs.Handler {
	return &jobHandler{
		jobUC: jobUC,
	}
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, jobs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, jobs.ErrAlreadyClaimed):
		return http.StatusConflict
	case errors.Is(err, jobs.ErrTerminalState), errors.Is(err, jobs.ErrInvalidTransition), errors.Is(err, jobs.ErrLockActive):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func errJSON(c echo.Context, err error) error {
	return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
}

func (h *jobHandler) CreateJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &models.JobCreateInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		job, err := h.jobUC.CreateJob(c.Request().Context(), input)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusCreated, job)
	}
}

func (h *jobHandler) GetJobByID() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("job_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		job, err := h.jobUC.GetJob(c.Request().Context(), jobID)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, job)
	}
}

func (h *jobHandler) ListJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		pagination, err := utils.GetPaginationFromCtx(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		list, err := h.jobUC.ListJobs(c.Request().Context(), pagination)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, list)
	}
}

func (h *jobHandler) DeleteJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("job_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		if err = h.jobUC.DeleteJob(c.Request().Context(), jobID); err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Job deleted successfully"})
	}
}

func (h *jobHandler) DispatchJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("job_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		job, err := h.jobUC.Dispatch(c.Request().Context(), jobID)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusAccepted, job)
	}
}

func (h *jobHandler) CancelJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("job_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		if err = h.jobUC.CancelJob(c.Request().Context(), jobID); err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Job cancelled"})
	}
}

func (h *jobHandler) RetryJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("job_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		job, err := h.jobUC.RetryJob(c.Request().Context(), jobID)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusCreated, job)
	}
}

func (h *jobHandler) GetStatus() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("job_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		view, err := h.jobUC.GetStatus(c.Request().Context(), jobID)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, view)
	}
}

// WatchJob streams job updates as server-sent events until the client
// disconnects.
func (h *jobHandler) WatchJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("job_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		ctx := c.Request().Context()
		updates, closeSub, err := h.jobUC.WatchJob(ctx, jobID)
		if err != nil {
			return errJSON(c, err)
		}
		defer closeSub()

		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set("Cache-Control", "no-cache")
		c.Response().Header().Set("Connection", "keep-alive")
		c.Response().WriteHeader(http.StatusOK)
		c.Response().Flush()

		for {
			select {
			case <-ctx.Done():
				return nil
			case job, ok := <-updates:
				if !ok {
					return nil
				}
				payload, mErr := json.Marshal(job)
				if mErr != nil {
					continue
				}
				if _, wErr := fmt.Fprintf(c.Response(), "data: %s\n\n", payload); wErr != nil {
					return nil
				}
				c.Response().Flush()
				if job.Status.IsTerminal() {
					return nil
				}
			}
		}
	}
}

func (h *jobHandler) GetArtifacts() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("job_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		artifacts, err := h.jobUC.GetArtifacts(c.Request().Context(), jobID)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, artifacts)
	}
}

func (h *jobHandler) ResetStaleJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("job_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		if err = h.jobUC.ResetStaleJob(c.Request().Context(), jobID); err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Job reset"})
	}
}
