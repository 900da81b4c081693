// Package handlers exposes the aggregation and matching engine over HTTP.
package handlers

import (
	"encoding/json"
	"net/http"

	"cinescout/models"
	"cinescout/services/catalog"
	"cinescout/services/matcher"
)

// ScreeningsHandler serves the catalog and matching endpoints.
type ScreeningsHandler struct {
	Catalog *catalog.Service
}

// NewScreeningsHandler creates the handler around the catalog service.
func NewScreeningsHandler(svc *catalog.Service) *ScreeningsHandler {
	return &ScreeningsHandler{Catalog: svc}
}

// GetScreenings returns the merged catalog with the per-source breakdown.
// Zero screenings with a clean breakdown is a normal "nothing on" response,
// not an error.
func (h *ScreeningsHandler) GetScreenings(w http.ResponseWriter, r *http.Request) {
	result := h.Catalog.Run(r.Context())
	writeJSON(w, http.StatusOK, result)
}

// matchRequest is the POST /api/match body.
type matchRequest struct {
	Films []models.WatchlistFilm `json:"films"`
}

// matchResponse pairs the matches with the run's source breakdown so a
// client can tell "no matches" apart from "half the sources were down".
type matchResponse struct {
	Matches   []models.MatchedScreening     `json:"matches"`
	Breakdown []models.SourceBreakdownEntry `json:"breakdown"`
}

// MatchWatchlist aggregates the catalog and matches the submitted watchlist
// against it. The watchlist is deduplicated by identity key before matching.
func (h *ScreeningsHandler) MatchWatchlist(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Films) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "films is required"})
		return
	}

	watchlist := models.DedupeWatchlist(req.Films)
	result := h.Catalog.Run(r.Context())
	matches := matcher.MatchFilms(watchlist, result.Screenings)
	if matches == nil {
		matches = []models.MatchedScreening{}
	}

	writeJSON(w, http.StatusOK, matchResponse{Matches: matches, Breakdown: result.Breakdown})
}

// Refresh discards all cached source listings and re-aggregates.
func (h *ScreeningsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result := h.Catalog.Refresh(r.Context())
	writeJSON(w, http.StatusOK, result)
}

// Health reports liveness.
func (h *ScreeningsHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
