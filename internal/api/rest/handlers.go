package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/arenhart/tradepost/internal/service"
)

// ScrapeTrigger requests an immediate scraping run. Satisfied by the
// scheduler orchestrator.
type ScrapeTrigger interface {
	TriggerRun() bool
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	trades  *service.TradeService
	scraper ScrapeTrigger
}

// NewHandler creates a new handler
func NewHandler(trades *service.TradeService, scraper ScrapeTrigger) *Handler {
	return &Handler{
		trades:  trades,
		scraper: scraper,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "tradepost",
	})
}

// GetPlayers returns every roster entry of the current snapshot.
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	players := h.trades.Players(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"players": players,
		"count":   len(players),
	})
}

// GetPlayer returns one roster entry by name (case-insensitive).
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	player, ok := h.trades.Player(r.Context(), name)
	if !ok {
		respondError(w, http.StatusNotFound, "Player not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, player)
}

// GetMatches returns all trade opportunities over the current snapshot.
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	matches := h.trades.Matches(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}

// GetMatchesForPlayer returns opportunities where the named player gives.
func (h *Handler) GetMatchesForPlayer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	if _, ok := h.trades.Player(r.Context(), name); !ok {
		respondError(w, http.StatusNotFound, "Player not found", nil)
		return
	}

	matches := h.trades.MatchesFor(r.Context(), name)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player":  name,
		"matches": matches,
		"count":   len(matches),
	})
}

// SearchCards runs the free-text have-list search. A blank query is a
// bad request, and zero hits is an explicit no-match answer rather than
// an empty 200 body.
func (h *Handler) SearchCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		respondError(w, http.StatusBadRequest, "Query parameter 'q' is required", nil)
		return
	}

	results := h.trades.Search(r.Context(), query)

	response := map[string]interface{}{
		"query":   query,
		"results": results,
		"count":   len(results),
	}
	if len(results) == 0 {
		response["message"] = "No player has a card matching this name"
	}

	respondJSON(w, http.StatusOK, response)
}

// TriggerScrape requests an immediate scraping run.
func (h *Handler) TriggerScrape(w http.ResponseWriter, r *http.Request) {
	if h.scraper == nil {
		respondError(w, http.StatusServiceUnavailable, "Scraping is not enabled on this instance", nil)
		return
	}

	if !h.scraper.TriggerRun() {
		respondJSON(w, http.StatusAccepted, map[string]string{
			"status": "already_pending",
		})
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "scheduled",
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
