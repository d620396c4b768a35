package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

// GameManager owns one session per connected player and remembers the
// setup each player picked.
type GameManager struct {
	logger     *slog.Logger
	playerRepo playerRepo

	defaults    entity.Settings
	sessionOpts []tictactoe.Option

	mu       sync.Mutex
	sessions map[string]*tictactoe.Session
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, defaults entity.Settings, sessionOpts ...tictactoe.Option) *GameManager {
	return &GameManager{
		logger:     logger.With("component", "game_manager"),
		playerRepo: playerRepo,

		defaults:    defaults,
		sessionOpts: append([]tictactoe.Option{tictactoe.WithLogger(logger)}, sessionOpts...),

		sessions: make(map[string]*tictactoe.Session),
	}
}

// Connect - starts a fresh game for the player and streams its later events
// to listener. An empty id creates a new player. The returned session
// identifies this connection in Disconnect.
func (that *GameManager) Connect(ctx context.Context, playerID string, listener tictactoe.Listener) (*entity.Player, *tictactoe.Session, error) {
	player, err := that.getOrCreatePlayer(ctx, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get or create player: %w", err)
	}

	opts := append([]tictactoe.Option{tictactoe.WithListener(listener)}, that.sessionOpts...)
	session := tictactoe.NewSession(player.Settings, opts...)

	that.mu.Lock()
	previous, ok := that.sessions[player.ID]
	that.sessions[player.ID] = session
	that.mu.Unlock()

	if ok {
		previous.Close()
		that.logger.Info("replaced existing session", "playerID", player.ID)
	}

	return player, session, nil
}

// Disconnect - closes session and forgets it unless the player has already
// reconnected with a newer one. The stored setup is kept.
func (that *GameManager) Disconnect(playerID string, session *tictactoe.Session) {
	that.mu.Lock()
	if current, ok := that.sessions[playerID]; ok && current == session {
		delete(that.sessions, playerID)
	}
	that.mu.Unlock()

	session.Close()
}

// MakeTurn - applies the human move. Moves the session does not accept are
// ignored and the unchanged snapshot is returned.
func (that *GameManager) MakeTurn(_ context.Context, playerID string, cell int) (entity.Snapshot, error) {
	if !entity.IsValidCell(cell) {
		return entity.Snapshot{}, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	session, err := that.getSession(playerID)
	if err != nil {
		return entity.Snapshot{}, err
	}

	if !session.ApplyHumanMove(cell) {
		that.logger.Debug("move ignored", "playerID", playerID, "cell", cell)
	}

	return session.Snapshot(), nil
}

// Restart - new game with the current setup.
func (that *GameManager) Restart(ctx context.Context, playerID string) (entity.Snapshot, error) {
	return that.restart(ctx, playerID)
}

// ChangeDifficulty - restarts with a new difficulty.
func (that *GameManager) ChangeDifficulty(ctx context.Context, playerID, value string) (entity.Snapshot, error) {
	difficulty, err := entity.ParseDifficulty(value)
	if err != nil {
		return entity.Snapshot{}, err
	}

	return that.restart(ctx, playerID, tictactoe.WithDifficulty(difficulty))
}

// ChooseMark - restarts with the human on the given mark.
func (that *GameManager) ChooseMark(ctx context.Context, playerID, value string) (entity.Snapshot, error) {
	mark, err := entity.ParseMark(value)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("%w: %q", err, value)
	}

	return that.restart(ctx, playerID, tictactoe.WithHumanMark(mark))
}

func (that *GameManager) restart(ctx context.Context, playerID string, opts ...tictactoe.RestartOption) (entity.Snapshot, error) {
	session, err := that.getSession(playerID)
	if err != nil {
		return entity.Snapshot{}, err
	}

	session.Restart(opts...)

	if len(opts) > 0 {
		that.saveSettings(ctx, playerID, session.Settings())
	}

	return session.Snapshot(), nil
}

func (that *GameManager) getSession(playerID string) (*tictactoe.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: player %s", apperror.ErrSessionNotFound, playerID)
	}

	return session, nil
}

func (that *GameManager) getOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	log := that.logger.With("method", "getOrCreatePlayer")

	if playerID != "" {
		player, err := that.playerRepo.GetByID(ctx, playerID)
		if err == nil {
			return player, nil
		}

		if !errors.Is(err, apperror.ErrPlayerNotFound) {
			return nil, fmt.Errorf("failed to get player by id: %w", err)
		}

		log.Info("unknown player, starting with defaults", "playerID", playerID)
	} else {
		playerID = uuid.NewString()
	}

	player := &entity.Player{
		ID:       playerID,
		Settings: that.defaults,
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

// saveSettings - errors are logged, not returned.
func (that *GameManager) saveSettings(ctx context.Context, playerID string, settings entity.Settings) {
	player := &entity.Player{
		ID:       playerID,
		Settings: settings,
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		that.logger.Error("failed to save player settings", "playerID", playerID, "error", err)
	}
}
