package entity

import (
	"errors"
	"fmt"
)

type Difficulty string

const (
	DifficultyEasy       Difficulty = "easy"
	DifficultyMedium     Difficulty = "medium"
	DifficultyImpossible Difficulty = "impossible"
)

var (
	ErrInvalidMark       = errors.New("invalid mark")
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyImpossible}
)

func ParseDifficulty(value string) (Difficulty, error) {
	for _, difficulty := range Difficulties {
		if string(difficulty) == value {
			return difficulty, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, value)
}

// State is a phase of the turn state machine.
type State string

const (
	StateAwaitingHumanMove State = "awaiting_human_move"
	StateAiThinking        State = "ai_thinking"
	StateEnded             State = "ended"
)

type Result string

const (
	ResultNone     Result = ""
	ResultHumanWin Result = "human_win"
	ResultAiWin    Result = "ai_win"
	ResultDraw     Result = "draw"
)

const (
	StatusYourTurn   = "Your Turn"
	StatusAiThinking = "AI Thinking..."
	StatusHumanWin   = "You Win!"
	StatusAiWin      = "AI Wins!"
	StatusDraw       = "Draw!"
)

// StatusText - text the view shows for a state and result.
func StatusText(state State, result Result) string {
	switch state {
	case StateAiThinking:
		return StatusAiThinking
	case StateEnded:
		switch result {
		case ResultHumanWin:
			return StatusHumanWin
		case ResultAiWin:
			return StatusAiWin
		default:
			return StatusDraw
		}
	default:
		return StatusYourTurn
	}
}

// Settings are reapplied on every restart.
type Settings struct {
	HumanMark  Mark       `json:"human_mark"`
	Difficulty Difficulty `json:"difficulty"`
}

func DefaultSettings() Settings {
	return Settings{
		HumanMark:  PlayerX,
		Difficulty: DifficultyImpossible,
	}
}

func (that Settings) AiMark() Mark {
	return that.HumanMark.Opponent()
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	Board    Board    `json:"board"`
	Turn     Mark     `json:"turn"`
	State    State    `json:"state"`
	Result   Result   `json:"result,omitempty"`
	Status   string   `json:"status"`
	Settings Settings `json:"settings"`
}
