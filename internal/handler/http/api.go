package http

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/windfall/dialektlab/internal/errors"
	"github.com/windfall/dialektlab/internal/lesson"
	"github.com/windfall/dialektlab/internal/service"
	"github.com/windfall/dialektlab/pkg/response"
)

// APIHandler handles the lesson and audio endpoints. Both respond with bare
// payloads, matching the wire contract the clients speak.
type APIHandler struct {
	log           zerolog.Logger
	lessonService *service.LessonService
	audioService  *service.AudioService
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	log zerolog.Logger,
	lessonService *service.LessonService,
	audioService *service.AudioService,
) *APIHandler {
	return &APIHandler{
		log:           log,
		lessonService: lessonService,
		audioService:  audioService,
	}
}

// CreateLesson handles POST /api/lesson
func (h *APIHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req lesson.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, errors.Validation("invalid request body"))
		return
	}

	if len(strings.TrimSpace(req.Topic)) < 3 {
		h.handleError(w, errors.Validation("topic must be at least 3 characters"))
		return
	}

	result, err := h.lessonService.CreateLesson(ctx, req)
	if err != nil {
		h.log.Error().Err(err).Str("topic", req.Topic).Msg("Lesson creation failed")
		h.handleError(w, err)
		return
	}

	response.JSONBody(w, http.StatusOK, result)
}

// FetchAudio handles POST /api/audio
func (h *APIHandler) FetchAudio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req lesson.AudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, errors.Validation("invalid request body"))
		return
	}

	if req.Text == "" {
		h.handleError(w, errors.Validation("text is required"))
		return
	}

	result, err := h.audioService.FetchAudio(ctx, req.Text, req.Dialect)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSONBody(w, http.StatusOK, result)
}

// handleError maps application errors to HTTP error responses.
func (h *APIHandler) handleError(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		response.Error(w, appErr.HTTPStatus(), &response.ErrorBody{
			Code:    string(appErr.Code),
			Message: appErr.Message,
			Details: appErr.Details,
		})
		return
	}

	response.InternalError(w, "internal server error")
}
