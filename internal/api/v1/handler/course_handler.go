package handler

import (
	"net/http"
	"strconv"

	"app/internal/api/v1/dto"
	"app/internal/model"
	"app/internal/service"
)

type CourseHandler struct {
	courseService service.CourseService
}

func NewCourseHandler(courseService service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// RegisterRoutes mounts v1 course routes
func (h *CourseHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/courses/popular", http.HandlerFunc(h.getPopular))
	mux.Handle("/courses/recommendations", http.HandlerFunc(h.getRecommendations))
}

func (h *CourseHandler) getPopular(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	courses, err := h.courseService.PopularCourses(r.Context(), parseLimit(r, 10))
	if err != nil {
		http.Error(w, "Failed to retrieve popular courses: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toCourseSummaries(courses))
}

func (h *CourseHandler) getRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId query parameter is required", http.StatusBadRequest)
		return
	}

	courses, err := h.courseService.Recommendations(r.Context(), userID, parseLimit(r, 10))
	if err != nil {
		http.Error(w, "Failed to retrieve recommendations: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toCourseSummaries(courses))
}

func parseLimit(r *http.Request, fallback int) int {
	limit := fallback
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 {
			limit = l
		}
	}
	return limit
}

func toCourseSummaries(courses []model.Course) []dto.CourseSummaryDTO {
	summaries := []dto.CourseSummaryDTO{}
	for _, c := range courses {
		summaries = append(summaries, dto.CourseSummaryDTO{
			CourseID:       c.ID,
			Title:          c.Title,
			Category:       c.Category,
			Location:       c.Location,
			Tags:           c.Tags,
			LikeCount:      c.LikeCount,
			AverageRating:  c.AverageRating,
			ReviewCount:    c.ReviewCount,
			PopularityRank: c.PopularityRank,
		})
	}
	return summaries
}
