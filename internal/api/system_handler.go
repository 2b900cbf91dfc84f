package api

import (
	"net/http"

	"github.com/gmubooktrading/api/internal/api/shared"
)

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "ok",
		Message: "GMU Book Trading Co Backend is running",
	})
}

// Welcome handles GET /.
func Welcome(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, WelcomeResponse{
		Message: "Welcome to GMU Book Trading Co API",
		Health:  "/health",
		Metrics: "/metrics",
	})
}
