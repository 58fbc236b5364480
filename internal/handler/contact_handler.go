package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/middleware"
	"prepkit-sync-server/internal/repository"
	"prepkit-sync-server/internal/service"
	"prepkit-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type ContactHandler struct {
	contacts *service.ContactService
	validate *validator.Validate
}

func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{
		contacts: contacts,
		validate: validator.New(),
	}
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	contact, err := h.contacts.Create(userID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create contact")
		return
	}

	response.Created(w, contact)
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	contacts, err := h.contacts.List(userID)
	if err != nil {
		response.InternalError(w, "Failed to list contacts")
		return
	}

	response.Success(w, contacts)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	contactID := mux.Vars(r)["id"]

	var req domain.UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	contact, err := h.contacts.Update(userID, contactID, &req)
	if err != nil {
		h.writeContactError(w, err)
		return
	}

	response.Success(w, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	contactID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	if err := h.contacts.Delete(userID, contactID); err != nil {
		h.writeContactError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Contact deleted"})
}

type contactAccessRequest struct {
	IsFavorite bool      `json:"is_favorite"`
	AccessedAt time.Time `json:"accessed_at"`
}

// RecordAccess applies a ContactAccess sync operation over REST.
func (h *ContactHandler) RecordAccess(w http.ResponseWriter, r *http.Request) {
	contactID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	var req contactAccessRequest
	json.NewDecoder(r.Body).Decode(&req)
	if req.AccessedAt.IsZero() {
		req.AccessedAt = time.Now()
	}

	err := h.contacts.ApplyAccessSync(userID, &domain.ContactAccessPayload{
		ContactID:  contactID,
		IsFavorite: req.IsFavorite,
		AccessedAt: req.AccessedAt,
	})
	if err != nil {
		h.writeContactError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Access recorded"})
}

func (h *ContactHandler) writeContactError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(w, "Contact not found")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(w, "Contact does not belong to user")
	default:
		response.InternalError(w, "Failed to update contact")
	}
}
