// Package tictactoe drives a single human-versus-AI game: whose turn it is,
// when the game ends and when the AI gets to move.
package tictactoe

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-ai/internal/engine"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

// DefaultAiDelay - pause between the human move and the AI answer.
const DefaultAiDelay = 500 * time.Millisecond

// Listener receives every visible change of a session. Callbacks run while
// the session is locked and must not call back into it.
type Listener interface {
	CellUpdated(index int, mark entity.Mark)
	StatusChanged(status string)
	GameEnded(result entity.Result)
	BoardReset()
}

// Scheduler runs task once after delay and returns a function that cancels it.
type Scheduler func(delay time.Duration, task func()) (cancel func() bool)

func afterFunc(delay time.Duration, task func()) func() bool {
	return time.AfterFunc(delay, task).Stop
}

// aiTask identifies the position a deferred AI move was scheduled for.
type aiTask struct {
	generation uint64
	moves      int
}

// Session is one game between a human and the AI. It is safe for concurrent
// use; the deferred AI move runs on its own goroutine.
type Session struct {
	mu sync.Mutex

	logger    *slog.Logger
	listener  Listener
	random    engine.Random
	scheduler Scheduler
	aiDelay   time.Duration

	board    entity.Board
	turn     entity.Mark
	state    entity.State
	result   entity.Result
	settings entity.Settings

	// generation changes on every restart, invalidating pending AI moves.
	generation uint64
	cancelAi   func() bool
}

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(that *Session) {
		that.logger = logger
	}
}

func WithListener(listener Listener) Option {
	return func(that *Session) {
		that.listener = listener
	}
}

func WithRandom(random engine.Random) Option {
	return func(that *Session) {
		that.random = random
	}
}

func WithScheduler(scheduler Scheduler) Option {
	return func(that *Session) {
		that.scheduler = scheduler
	}
}

func WithAiDelay(delay time.Duration) Option {
	return func(that *Session) {
		that.aiDelay = delay
	}
}

// RestartOption changes the settings a restart applies.
type RestartOption func(*entity.Settings)

func WithHumanMark(mark entity.Mark) RestartOption {
	return func(settings *entity.Settings) {
		if mark.IsPlayer() {
			settings.HumanMark = mark
		}
	}
}

func WithDifficulty(difficulty entity.Difficulty) RestartOption {
	return func(settings *entity.Settings) {
		if difficulty != "" {
			settings.Difficulty = difficulty
		}
	}
}

// NewSession - creates a session and starts its first game. The first game
// is not reported to the listener; callers read it from Snapshot.
func NewSession(settings entity.Settings, opts ...Option) *Session {
	session := &Session{
		logger:    slog.New(slog.DiscardHandler),
		listener:  nopListener{},
		random:    rand.New(rand.NewSource(time.Now().UnixNano())), //nolint: gosec // game randomness
		scheduler: afterFunc,
		aiDelay:   DefaultAiDelay,
		settings:  entity.DefaultSettings(),
	}

	for _, opt := range opts {
		opt(session)
	}

	session.logger = session.logger.With("component", "session")

	listener := session.listener
	session.listener = nopListener{}

	session.Restart(WithHumanMark(settings.HumanMark), WithDifficulty(settings.Difficulty))

	// the first game never leaves a pending AI move, so nothing can be missed here
	session.mu.Lock()
	session.listener = listener
	session.mu.Unlock()

	return session
}

// ApplyHumanMove - places the human mark. Moves out of turn, on occupied
// cells or after the end are ignored and reported as false.
func (that *Session) ApplyHumanMove(cell int) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.state != entity.StateAwaitingHumanMove || !entity.IsValidCell(cell) || !that.board.IsEmpty(cell) {
		that.logger.Debug("human move ignored", "cell", cell, "state", that.state)
		return false
	}

	human := that.settings.HumanMark
	that.place(cell, human)

	switch {
	case that.board.IsWin(human):
		that.end(entity.ResultHumanWin)
	case that.board.IsDraw():
		that.end(entity.ResultDraw)
	default:
		that.setState(entity.StateAiThinking, that.settings.AiMark())
		that.scheduleAiMove()
	}

	return true
}

// RunAiMove - plays the AI's move now. Only accepted while the AI is thinking.
func (that *Session) RunAiMove() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.runAiMove()
}

// Restart - discards the current game and starts a new one with the
// updated settings. When the AI owns X it opens immediately.
func (that *Session) Restart(opts ...RestartOption) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, opt := range opts {
		opt(&that.settings)
	}

	that.stopAi()
	that.generation++
	that.board = entity.Board{}
	that.result = entity.ResultNone
	that.listener.BoardReset()

	that.logger.Debug("game restarted",
		"generation", that.generation,
		"human", that.settings.HumanMark,
		"difficulty", that.settings.Difficulty,
	)

	if that.settings.HumanMark == entity.FirstMover {
		that.setState(entity.StateAwaitingHumanMove, entity.FirstMover)
		return
	}

	that.setState(entity.StateAiThinking, entity.FirstMover)
	that.runAiMove()
}

// Close - cancels a pending AI move. The session must not be used afterwards.
func (that *Session) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.stopAi()
	that.generation++
}

func (that *Session) Snapshot() entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return entity.Snapshot{
		Board:    that.board,
		Turn:     that.turn,
		State:    that.state,
		Result:   that.result,
		Status:   entity.StatusText(that.state, that.result),
		Settings: that.settings,
	}
}

func (that *Session) Settings() entity.Settings {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.settings
}

func (that *Session) runAiMove() bool {
	if that.state != entity.StateAiThinking {
		return false
	}

	that.stopAi()

	ai, human := that.settings.AiMark(), that.settings.HumanMark
	cell := engine.ChooseMove(that.board, that.settings.Difficulty, ai, human, that.random)
	if cell == engine.NoMove {
		that.logger.Error("no move available for AI", "board", that.board)
		return false
	}

	that.place(cell, ai)

	switch {
	case that.board.IsWin(ai):
		that.end(entity.ResultAiWin)
	case that.board.IsDraw():
		that.end(entity.ResultDraw)
	default:
		that.setState(entity.StateAwaitingHumanMove, human)
	}

	return true
}

func (that *Session) scheduleAiMove() {
	task := aiTask{generation: that.generation, moves: that.board.MoveCount()}

	that.cancelAi = that.scheduler(that.aiDelay, func() {
		that.runScheduledAiMove(task)
	})
}

// runScheduledAiMove - a task from an earlier game or position is a no-op.
func (that *Session) runScheduledAiMove(task aiTask) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if task.generation != that.generation || task.moves != that.board.MoveCount() {
		that.logger.Debug("stale AI move dropped", "generation", task.generation)
		return
	}

	that.runAiMove()
}

func (that *Session) stopAi() {
	if that.cancelAi != nil {
		that.cancelAi()
		that.cancelAi = nil
	}
}

func (that *Session) place(cell int, mark entity.Mark) {
	that.board.Place(cell, mark)
	that.listener.CellUpdated(cell, mark)
}

func (that *Session) setState(state entity.State, turn entity.Mark) {
	that.state = state
	that.turn = turn
	that.listener.StatusChanged(entity.StatusText(state, that.result))
}

func (that *Session) end(result entity.Result) {
	that.result = result
	that.setState(entity.StateEnded, entity.Empty)
	that.listener.GameEnded(result)

	that.logger.Debug("game ended", "result", result, "generation", that.generation)
}

type nopListener struct{}

func (nopListener) CellUpdated(int, entity.Mark) {}
func (nopListener) StatusChanged(string)         {}
func (nopListener) GameEnded(entity.Result)      {}
func (nopListener) BoardReset()                  {}
