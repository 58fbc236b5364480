package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/repository"
	"prepkit-sync-server/internal/service"
	"prepkit-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type ModuleHandler struct {
	content  *service.ContentService
	validate *validator.Validate
}

func NewModuleHandler(content *service.ContentService) *ModuleHandler {
	return &ModuleHandler{
		content:  content,
		validate: validator.New(),
	}
}

func (h *ModuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	module, err := h.content.CreateModule(&req)
	if err != nil {
		response.InternalError(w, "Failed to create module")
		return
	}

	response.Created(w, module)
}

func (h *ModuleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	filter := domain.ModuleListFilter{
		Category:   domain.HazardCategory(q.Get("category")),
		Difficulty: domain.Difficulty(q.Get("difficulty")),
		Page:       page,
		PerPage:    perPage,
	}

	modules, total, err := h.content.ListModules(filter)
	if err != nil {
		response.InternalError(w, "Failed to list modules")
		return
	}

	response.Paginated(w, modules, response.NewPagination(page, perPage, total))
}

func (h *ModuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	module, err := h.content.GetModule(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Module not found")
			return
		}
		response.InternalError(w, "Failed to get module")
		return
	}

	response.Success(w, module)
}

func (h *ModuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req domain.UpdateModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	module, err := h.content.UpdateModule(id, &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Module not found")
			return
		}
		response.InternalError(w, "Failed to update module")
		return
	}

	response.Success(w, module)
}

func (h *ModuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.content.DeleteModule(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Module not found")
			return
		}
		response.InternalError(w, "Failed to delete module")
		return
	}

	response.Success(w, map[string]string{"message": "Module deleted"})
}

func (h *ModuleHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	lessons, err := h.content.ListLessons(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Module not found")
			return
		}
		response.InternalError(w, "Failed to list lessons")
		return
	}

	response.Success(w, lessons)
}

func (h *ModuleHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	lessonID := mux.Vars(r)["lessonId"]

	quizzes, err := h.content.ListQuizzes(lessonID)
	if err != nil {
		response.InternalError(w, "Failed to list quizzes")
		return
	}

	response.Success(w, quizzes)
}
