package handler

import (
	"net/http"
	"strconv"

	"prepkit-sync-server/internal/middleware"
	"prepkit-sync-server/internal/service"
	"prepkit-sync-server/pkg/response"
)

type StatsHandler struct {
	stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	summary, err := h.stats.Summary(userID)
	if err != nil {
		response.InternalError(w, "Failed to compute stats")
		return
	}

	response.Success(w, summary)
}

func (h *StatsHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	achievements, err := h.stats.Achievements(userID)
	if err != nil {
		response.InternalError(w, "Failed to compute achievements")
		return
	}

	response.Success(w, achievements)
}

func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	entries, total, err := h.stats.Leaderboard(page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to compute leaderboard")
		return
	}

	response.Paginated(w, entries, response.NewPagination(page, perPage, total))
}

func (h *StatsHandler) Badges(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	badges, err := h.stats.Badges(userID)
	if err != nil {
		response.InternalError(w, "Failed to compute badges")
		return
	}

	response.Success(w, badges)
}
