package handlers

import (
	"net/http"
)

// GetStatsHandler godoc
// @Summary Site statistics
// @Tags stats
// @Produce json
// @Success 200 {object} repo.Stats
// @Failure 500 {object} ErrorResponse
// @Router /api/stats [get]
func GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	s, err := statsRepo.GetStats(r.Context())
	if err != nil {
		logger.Error("failed to fetch stats", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch stats")
		return
	}
	if err := writeJSON(w, http.StatusOK, s); err != nil {
		logger.Error("failed to write JSON response", "err", err)
	}
}
