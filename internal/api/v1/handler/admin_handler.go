package handler

import (
	"fmt"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/service"
)

// AdminHandler exposes manual triggers for the scheduled jobs.
type AdminHandler struct {
	courseService       service.CourseService
	notificationService service.NotificationService
	statsService        service.StatsService
}

func NewAdminHandler(
	courseService service.CourseService,
	notificationService service.NotificationService,
	statsService service.StatsService,
) *AdminHandler {
	return &AdminHandler{
		courseService:       courseService,
		notificationService: notificationService,
		statsService:        statsService,
	}
}

// RegisterRoutes mounts v1 admin routes behind the auth middleware
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/admin/tasks/popularity", authMw(http.HandlerFunc(h.runPopularity)))
	mux.Handle("/admin/tasks/cleanup", authMw(http.HandlerFunc(h.runCleanup)))
	mux.Handle("/admin/tasks/daily-stats", authMw(http.HandlerFunc(h.runDailyStats)))
}

func (h *AdminHandler) runPopularity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	ranked, err := h.courseService.UpdatePopularityRanking(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.APIResponse{Success: false, Message: "failed to update ranking"})
		return
	}
	writeJSON(w, http.StatusOK, dto.APIResponse{Success: true, Message: fmt.Sprintf("ranked %d courses", ranked)})
}

func (h *AdminHandler) runCleanup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	deleted, err := h.notificationService.CleanupOld(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.APIResponse{Success: false, Message: "failed to clean up notifications"})
		return
	}
	writeJSON(w, http.StatusOK, dto.APIResponse{Success: true, Message: fmt.Sprintf("deleted %d notifications", deleted)})
}

func (h *AdminHandler) runDailyStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	stats, err := h.statsService.GenerateDailyStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.APIResponse{Success: false, Message: "failed to generate stats"})
		return
	}
	writeJSON(w, http.StatusOK, dto.APIResponse{
		Success: true,
		Message: fmt.Sprintf("stats for %s generated", stats.StatDate.Format("2006-01-02")),
	})
}
