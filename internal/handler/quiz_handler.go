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
)

type QuizHandler struct {
	content  *service.ContentService
	validate *validator.Validate
}

func NewQuizHandler(content *service.ContentService) *QuizHandler {
	return &QuizHandler{
		content:  content,
		validate: validator.New(),
	}
}

func (h *QuizHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitQuizResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	result, duplicate, err := h.content.SubmitQuizResult(userID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Quiz not found")
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
