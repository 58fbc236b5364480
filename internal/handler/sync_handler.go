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

type SyncHandler struct {
	sync     *service.SyncService
	devices  *service.DeviceService
	validate *validator.Validate
}

func NewSyncHandler(sync *service.SyncService, devices *service.DeviceService) *SyncHandler {
	return &SyncHandler{
		sync:     sync,
		devices:  devices,
		validate: validator.New(),
	}
}

// ApplyOperations ingests one batch of queued operations from a device.
// Devices may replay the whole batch after a lost response; every apply path
// is idempotent so the verdicts come back identical.
func (h *SyncHandler) ApplyOperations(w http.ResponseWriter, r *http.Request) {
	var req domain.ApplyOperationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	resp, err := h.sync.ApplyOperations(userID, &req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.Success(w, resp)
}

// Status reports the per-device sync state for the user's device list.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	devices, err := h.devices.List(userID)
	if err != nil {
		response.InternalError(w, "Failed to load sync status")
		return
	}

	response.Success(w, devices)
}
