package handlers

import (
	"context"
	"net/http"

	"alumniConnectAPI/services"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GetPlatformAnalytics handles GET /analytics
func (h *AnalyticsHandler) GetPlatformAnalytics(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUser(w, r); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	analytics, err := h.analytics.GetPlatformAnalytics(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}
	respondWithJSON(w, http.StatusOK, analytics)
}

// GetHeatmap handles GET /analytics/heatmap
func (h *AnalyticsHandler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUser(w, r); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	heatmap, err := h.analytics.GetLocationHeatmap(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to build heatmap")
		return
	}
	respondWithJSON(w, http.StatusOK, heatmap)
}
