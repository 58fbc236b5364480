package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/middleware"
	"prepkit-sync-server/internal/repository"
	"prepkit-sync-server/internal/service"
	"prepkit-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type ProgressHandler struct {
	progress *service.ProgressService
	validate *validator.Validate
}

func NewProgressHandler(progress *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progress: progress,
		validate: validator.New(),
	}
}

// UpsertModule is idempotent: repeating the request (interactively or from a
// retried sync operation) rewrites the same row.
func (h *ProgressHandler) UpsertModule(w http.ResponseWriter, r *http.Request) {
	var req domain.UpsertModuleProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	p, err := h.progress.UpsertModuleProgress(userID, &req)
	if err != nil {
		response.InternalError(w, "Failed to save progress")
		return
	}

	response.Success(w, p)
}

func (h *ProgressHandler) UpsertLesson(w http.ResponseWriter, r *http.Request) {
	var req domain.UpsertLessonProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	p, err := h.progress.UpsertLessonProgress(userID, &req)
	if err != nil {
		response.InternalError(w, "Failed to save progress")
		return
	}

	response.Success(w, p)
}

func (h *ProgressHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	progress, err := h.progress.ListModuleProgress(userID)
	if err != nil {
		response.InternalError(w, "Failed to list progress")
		return
	}

	response.Success(w, progress)
}

func (h *ProgressHandler) GetModule(w http.ResponseWriter, r *http.Request) {
	moduleID := mux.Vars(r)["moduleId"]
	userID := middleware.GetUserID(r)

	p, err := h.progress.GetModuleProgress(userID, moduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "No progress for module")
			return
		}
		response.InternalError(w, "Failed to get progress")
		return
	}

	response.Success(w, p)
}
