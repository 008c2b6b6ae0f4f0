package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/creatorhub/media-orchestrator/internal/jobs"
	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/internal/uploads"
)

type uploadHandler struct {
	uploadUC uploads.UseCase
}

func NewUploadHandler(uploadUC uploads.UseCase) uploads.Handler {
	return &uploadHandler{
		uploadUC: uploadUC,
	}
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, uploads.ErrSessionNotFound), errors.Is(err, jobs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, jobs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, uploads.ErrSessionClosed), errors.Is(err, uploads.ErrSessionPaused),
		errors.Is(err, uploads.ErrInvalidJob), errors.Is(err, uploads.ErrIncompleteUpload):
		return http.StatusConflict
	case errors.Is(err, uploads.ErrStoreFinalization):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func errJSON(c echo.Context, err error) error {
	return c.JSON(statusFromErr(err), map[string]string{"error": err.Error()})
}

func parseSessionID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("session_id"))
}

func (h *uploadHandler) CreateSession() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &models.UploadCreateInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		out, err := h.uploadUC.CreateSession(c.Request().Context(), input)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusCreated, out)
	}
}

func (h *uploadHandler) GetSession() echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID, err := parseSessionID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid session id"})
		}
		out, err := h.uploadUC.GetSession(c.Request().Context(), sessionID)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func (h *uploadHandler) PresignPart() echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID, err := parseSessionID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid session id"})
		}
		var partNumber int
		if err = echo.PathParamsBinder(c).Int("part_number", &partNumber).BindError(); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid part number"})
		}
		url, err := h.uploadUC.PresignPart(c.Request().Context(), sessionID, partNumber)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"presignUrl": url})
	}
}

func (h *uploadHandler) RecordPart() echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID, err := parseSessionID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid session id"})
		}
		input := &models.RecordPartInput{}
		if err = c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		if err = h.uploadUC.RecordPart(c.Request().Context(), sessionID, input); err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Part recorded"})
	}
}

func (h *uploadHandler) CompleteSession() echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID, err := parseSessionID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid session id"})
		}
		objectKey, err := h.uploadUC.CompleteSession(c.Request().Context(), sessionID)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"objectKey": objectKey})
	}
}

func (h *uploadHandler) PauseSession() echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID, err := parseSessionID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid session id"})
		}
		if err = h.uploadUC.PauseSession(c.Request().Context(), sessionID); err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Session paused"})
	}
}

func (h *uploadHandler) ResumeSession() echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID, err := parseSessionID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid session id"})
		}
		out, err := h.uploadUC.ResumeSession(c.Request().Context(), sessionID)
		if err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func (h *uploadHandler) CancelSession() echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID, err := parseSessionID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid session id"})
		}
		if err = h.uploadUC.CancelSession(c.Request().Context(), sessionID); err != nil {
			return errJSON(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Session cancelled"})
	}
}
