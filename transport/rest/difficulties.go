package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

type difficultiesResponse struct {
	Difficulties []entity.Difficulty `json:"difficulties"`
	Default      entity.Settings     `json:"default"`
}

func newDifficultiesHandler(logger *slog.Logger, defaults entity.Settings) http.HandlerFunc {
	log := logger.With("method", "difficulties")

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		response := difficultiesResponse{
			Difficulties: entity.Difficulties,
			Default:      defaults,
		}

		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error("failed to encode response", "error", err)
		}
	}
}
