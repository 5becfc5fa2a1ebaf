package api

import (
	"log/slog"
	"net/http"

	"github.com/campuslab/elective-api/internal/api/shared"
	"github.com/campuslab/elective-api/internal/platform/logger"
	"github.com/campuslab/elective-api/internal/service"
)

// RecommendationHandler serves recommendation sessions and their evaluation.
type RecommendationHandler struct {
	recommendations service.RecommendationService
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(recommendations service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations}
}

// Recommend handles GET /api/recommendations?exclude=A,B for the
// authenticated student.
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.recommendations.Recommend(r.Context(), p.Subject, queryList(r, "exclude"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute recommendations")
		return
	}
	if result.Courses == nil {
		result.Courses = []service.RecommendedCourse{}
	}
	if result.Skipped {
		logger.FromContext(r.Context()).Info("recommendation session skipped",
			slog.String("reason", result.Reason))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Evaluation handles GET /api/admin/evaluation.
func (h *RecommendationHandler) Evaluation(w http.ResponseWriter, r *http.Request) {
	report, err := h.recommendations.Evaluate(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to evaluate recommendations")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}
