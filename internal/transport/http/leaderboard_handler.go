package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"arcquiz-service/internal/app"
	"arcquiz-service/internal/domain"
)

const defaultLeaderboardLimit = 20

// LeaderboardHandler serves the ranked highscore list as JSON.
type LeaderboardHandler struct {
	service *app.QuizService
}

func NewLeaderboardHandler(service *app.QuizService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	n := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid n", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	entries, err := h.service.Leaderboard(r.Context(), n)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCount) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("leaderboard query: %v", err)
		http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"entries": entries}); err != nil {
		log.Printf("leaderboard encode: %v", err)
	}
}
