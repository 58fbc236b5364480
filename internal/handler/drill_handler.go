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

type DrillHandler struct {
	drills   *service.DrillService
	validate *validator.Validate
}

func NewDrillHandler(drills *service.DrillService) *DrillHandler {
	return &DrillHandler{
		drills:   drills,
		validate: validator.New(),
	}
}

func (h *DrillHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDrillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	drill, err := h.drills.Create(&req)
	if err != nil {
		response.InternalError(w, "Failed to create drill")
		return
	}

	response.Created(w, drill)
}

func (h *DrillHandler) List(w http.ResponseWriter, r *http.Request) {
	category := domain.HazardCategory(r.URL.Query().Get("category"))

	drills, err := h.drills.List(category)
	if err != nil {
		response.InternalError(w, "Failed to list drills")
		return
	}

	response.Success(w, drills)
}

func (h *DrillHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	drill, err := h.drills.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Drill not found")
			return
		}
		response.InternalError(w, "Failed to get drill")
		return
	}

	response.Success(w, drill)
}

// SubmitResult ingests one drill run. The same endpoint serves interactive
// submissions and queue drains; a replayed client key is acknowledged as a
// duplicate, not an error.
func (h *DrillHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitDrillResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	result, duplicate, err := h.drills.SubmitResult(userID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Drill not found")
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	if duplicate {
		response.Success(w, map[string]any{
			"duplicate":  true,
			"client_key": req.ClientKey,
		})
		return
	}

	response.Created(w, result)
}

func (h *DrillHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	results, err := h.drills.ListResults(userID)
	if err != nil {
		response.InternalError(w, "Failed to list drill results")
		return
	}

	response.Success(w, results)
}
