package handler

import (
	"encoding/json"
	"net/http"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/middleware"
	"prepkit-sync-server/internal/service"
	"prepkit-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

type UserHandler struct {
	users    *service.UserService
	validate *validator.Validate
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{
		users:    users,
		validate: validator.New(),
	}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	user, err := h.users.GetByID(userID)
	if err != nil {
		response.NotFound(w, "User not found")
		return
	}

	response.Success(w, user)
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	profile, err := h.users.GetProfile(userID)
	if err != nil {
		response.NotFound(w, "Profile not found")
		return
	}

	response.Success(w, profile)
}

// UpdateProfile serves both interactive edits (partial) and profile sync
// operations replayed over REST (full payload); both converge on one row.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	profile, err := h.users.UpdateProfile(userID, &req)
	if err != nil {
		response.InternalError(w, "Failed to update profile")
		return
	}

	response.Success(w, profile)
}
