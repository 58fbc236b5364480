package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/middleware"
	"prepkit-sync-server/internal/service"
	"prepkit-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type AlertHandler struct {
	alerts   *service.AlertService
	validate *validator.Validate
}

func NewAlertHandler(alerts *service.AlertService) *AlertHandler {
	return &AlertHandler{
		alerts:   alerts,
		validate: validator.New(),
	}
}

func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	alert, err := h.alerts.Create(&req)
	if err != nil {
		response.InternalError(w, "Failed to create alert")
		return
	}

	response.Created(w, alert)
}

func (h *AlertHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")

	alerts, err := h.alerts.ListActive(region)
	if err != nil {
		response.InternalError(w, "Failed to list alerts")
		return
	}

	response.Success(w, alerts)
}

type markViewedRequest struct {
	ViewedAt time.Time `json:"viewed_at"`
}

// MarkViewed records a read receipt. The body is optional; an empty or absent
// timestamp means "now".
func (h *AlertHandler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	alertID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	var req markViewedRequest
	json.NewDecoder(r.Body).Decode(&req)

	if err := h.alerts.MarkViewed(userID, alertID, req.ViewedAt); err != nil {
		response.InternalError(w, "Failed to mark alert viewed")
		return
	}

	response.Success(w, map[string]string{"message": "Alert marked viewed"})
}

func (h *AlertHandler) ListViews(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	views, err := h.alerts.ListViews(userID)
	if err != nil {
		response.InternalError(w, "Failed to list alert views")
		return
	}

	response.Success(w, views)
}
