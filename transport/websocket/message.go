package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

const (
	actionConnect    = "connect"
	actionTurn       = "game:turn"
	actionRestart    = "game:restart"
	actionDifficulty = "game:difficulty"
	actionMark       = "game:mark"

	actionCell       = "cell"
	actionStatus     = "status"
	actionGameEnd    = "game:end"
	actionBoardReset = "board:reset"
	actionError      = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	PlayerID   string           `json:"player_id,omitempty"`
	Player     *entity.Player   `json:"player,omitempty"`
	Snapshot   *entity.Snapshot `json:"snapshot,omitempty"`
	Cell       *int             `json:"cell,omitempty"`
	Mark       entity.Mark      `json:"mark,omitempty"`
	Difficulty string           `json:"difficulty,omitempty"`
	Status     string           `json:"status,omitempty"`
	Result     entity.Result    `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
}

func encode(action string, payload Payload) ([]byte, error) {
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{
		Action:  action,
		Payload: rawPayload,
	})
}
