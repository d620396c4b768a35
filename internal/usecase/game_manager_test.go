package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/internal/tictactoe"
)

var errRedisDown = errors.New("redis down")

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type endListener struct {
	mu      sync.Mutex
	results []entity.Result
	resets  int
}

func (that *endListener) CellUpdated(int, entity.Mark) {}
func (that *endListener) StatusChanged(string)         {}

func (that *endListener) GameEnded(result entity.Result) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.results = append(that.results, result)
}

func (that *endListener) BoardReset() {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.resets++
}

func newManager(t *testing.T, repo *mockPlayerRepo) *GameManager {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewGameManager(logger, repo, entity.DefaultSettings(), tictactoe.WithAiDelay(time.Millisecond))
}

func TestGameManager_Connect(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a new player when the id is empty", func(t *testing.T) {
		// Given: a repository that accepts new players
		repo := &mockPlayerRepo{}
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Player")).Return(nil).Once()
		manager := newManager(t, repo)

		// When: connecting without an id
		listener := &endListener{}
		player, session, err := manager.Connect(ctx, "", listener)

		// Then: a player with default settings and a fresh game are returned
		require.NoError(t, err)
		snapshot := session.Snapshot()
		assert.Zero(t, listener.resets)
		assert.NotEmpty(t, player.ID)
		assert.Equal(t, entity.DefaultSettings(), player.Settings)
		assert.Equal(t, entity.StateAwaitingHumanMove, snapshot.State)
		repo.AssertExpectations(t)
	})

	t.Run("Restores the stored setup of a known player", func(t *testing.T) {
		// Given: a player who last played O on easy
		repo := &mockPlayerRepo{}
		stored := &entity.Player{ID: "p1", Settings: entity.Settings{HumanMark: entity.PlayerO, Difficulty: entity.DifficultyEasy}}
		repo.On("GetByID", mock.Anything, "p1").Return(stored, nil).Once()
		manager := newManager(t, repo)

		// When: the player connects
		player, session, err := manager.Connect(ctx, "p1", &endListener{})

		// Then: the game starts with the AI on X already moved
		require.NoError(t, err)
		snapshot := session.Snapshot()
		assert.Equal(t, stored, player)
		assert.Equal(t, entity.PlayerO, snapshot.Settings.HumanMark)
		assert.Equal(t, 1, snapshot.Board.MoveCount())
		assert.Equal(t, entity.PlayerO, snapshot.Turn)
		repo.AssertExpectations(t)
	})

	t.Run("Unknown id gets defaults under the same id", func(t *testing.T) {
		repo := &mockPlayerRepo{}
		repo.On("GetByID", mock.Anything, "ghost").Return(nil, apperror.ErrPlayerNotFound).Once()
		repo.On("CreateOrUpdate", mock.Anything, &entity.Player{ID: "ghost", Settings: entity.DefaultSettings()}).Return(nil).Once()
		manager := newManager(t, repo)

		player, _, err := manager.Connect(ctx, "ghost", &endListener{})

		require.NoError(t, err)
		assert.Equal(t, "ghost", player.ID)
		repo.AssertExpectations(t)
	})

	t.Run("Returns error if the repository fails", func(t *testing.T) {
		// Given: a repository that is down
		repo := &mockPlayerRepo{}
		repo.On("GetByID", mock.Anything, "p1").Return(nil, errRedisDown).Once()
		manager := newManager(t, repo)

		// When: the player connects
		player, _, err := manager.Connect(ctx, "p1", &endListener{})

		// Then: the error is wrapped and no session is created
		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, player)
		_, err = manager.Restart(ctx, "p1")
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Reconnect replaces the previous session", func(t *testing.T) {
		// Given: a connected player with a move on the board
		repo := &mockPlayerRepo{}
		repo.On("GetByID", mock.Anything, "p1").Return(&entity.Player{ID: "p1", Settings: entity.DefaultSettings()}, nil).Twice()
		manager := newManager(t, repo)

		_, _, err := manager.Connect(ctx, "p1", &endListener{})
		require.NoError(t, err)
		_, err = manager.MakeTurn(ctx, "p1", 4)
		require.NoError(t, err)

		// When: the same player connects again
		_, session, err := manager.Connect(ctx, "p1", &endListener{})

		// Then: a fresh game is served
		require.NoError(t, err)
		assert.Equal(t, entity.Board{}, session.Snapshot().Board)
	})
}

func TestGameManager_MakeTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("AI answers after the delay", func(t *testing.T) {
		// Given: a connected player
		repo := &mockPlayerRepo{}
		repo.On("GetByID", mock.Anything, "p1").Return(&entity.Player{ID: "p1", Settings: entity.DefaultSettings()}, nil)
		manager := newManager(t, repo)
		_, _, err := manager.Connect(ctx, "p1", &endListener{})
		require.NoError(t, err)

		// When: the player takes a corner
		snapshot, err := manager.MakeTurn(ctx, "p1", 0)

		// Then: the AI is thinking and soon takes the center
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, snapshot.Board[0])
		require.Eventually(t, func() bool {
			snapshot, err = manager.MakeTurn(ctx, "p1", 0)
			return err == nil && snapshot.State == entity.StateAwaitingHumanMove
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, entity.PlayerO, snapshot.Board[4])
	})

	t.Run("Invalid cell returns ErrInvalidCell", func(t *testing.T) {
		manager := newManager(t, &mockPlayerRepo{})

		_, err := manager.MakeTurn(ctx, "p1", 9)

		require.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Unknown player returns ErrSessionNotFound", func(t *testing.T) {
		manager := newManager(t, &mockPlayerRepo{})

		_, err := manager.MakeTurn(ctx, "nobody", 1)

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestGameManager_Settings(t *testing.T) {
	ctx := context.Background()

	connect := func(t *testing.T, repo *mockPlayerRepo, listener tictactoe.Listener) *GameManager {
		t.Helper()

		repo.On("GetByID", mock.Anything, "p1").Return(&entity.Player{ID: "p1", Settings: entity.DefaultSettings()}, nil).Once()
		manager := newManager(t, repo)
		_, _, err := manager.Connect(ctx, "p1", listener)
		require.NoError(t, err)

		return manager
	}

	t.Run("ChangeDifficulty restarts and stores the choice", func(t *testing.T) {
		// Given: a connected player
		repo := &mockPlayerRepo{}
		listener := &endListener{}
		manager := connect(t, repo, listener)
		repo.On("CreateOrUpdate", mock.Anything, &entity.Player{
			ID:       "p1",
			Settings: entity.Settings{HumanMark: entity.PlayerX, Difficulty: entity.DifficultyEasy},
		}).Return(nil).Once()

		// When: the difficulty changes
		snapshot, err := manager.ChangeDifficulty(ctx, "p1", "easy")

		// Then: the game restarted with the new difficulty
		require.NoError(t, err)
		assert.Equal(t, entity.DifficultyEasy, snapshot.Settings.Difficulty)
		assert.Equal(t, 1, listener.resets)
		repo.AssertExpectations(t)
	})

	t.Run("ChangeDifficulty rejects unknown values", func(t *testing.T) {
		repo := &mockPlayerRepo{}
		manager := connect(t, repo, &endListener{})

		_, err := manager.ChangeDifficulty(ctx, "p1", "nightmare")

		require.ErrorIs(t, err, entity.ErrInvalidDifficulty)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("ChooseMark hands X to the AI", func(t *testing.T) {
		// Given: a connected player
		repo := &mockPlayerRepo{}
		manager := connect(t, repo, &endListener{})
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Player")).Return(nil).Once()

		// When: the player picks O
		snapshot, err := manager.ChooseMark(ctx, "p1", "O")

		// Then: the AI opened with X
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, snapshot.Settings.HumanMark)
		assert.Equal(t, entity.PlayerX, snapshot.Board[0])
	})

	t.Run("ChooseMark rejects unknown marks", func(t *testing.T) {
		manager := connect(t, &mockPlayerRepo{}, &endListener{})

		_, err := manager.ChooseMark(ctx, "p1", "Z")

		require.ErrorIs(t, err, entity.ErrInvalidMark)
	})

	t.Run("Failed save still restarts the game", func(t *testing.T) {
		repo := &mockPlayerRepo{}
		manager := connect(t, repo, &endListener{})
		repo.On("CreateOrUpdate", mock.Anything, mock.Anything).Return(errRedisDown).Once()

		snapshot, err := manager.ChangeDifficulty(ctx, "p1", "medium")

		require.NoError(t, err)
		assert.Equal(t, entity.DifficultyMedium, snapshot.Settings.Difficulty)
	})

	t.Run("Restart keeps settings without saving", func(t *testing.T) {
		repo := &mockPlayerRepo{}
		manager := connect(t, repo, &endListener{})
		_, err := manager.MakeTurn(ctx, "p1", 0)
		require.NoError(t, err)

		snapshot, err := manager.Restart(ctx, "p1")

		require.NoError(t, err)
		assert.Equal(t, entity.Board{}, snapshot.Board)
		assert.Equal(t, entity.DefaultSettings(), snapshot.Settings)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})
}

func TestGameManager_Disconnect(t *testing.T) {
	ctx := context.Background()

	t.Run("Drops the session", func(t *testing.T) {
		// Given: a connected player
		repo := &mockPlayerRepo{}
		repo.On("GetByID", mock.Anything, "p1").Return(&entity.Player{ID: "p1", Settings: entity.DefaultSettings()}, nil).Once()
		manager := newManager(t, repo)
		_, session, err := manager.Connect(ctx, "p1", &endListener{})
		require.NoError(t, err)

		// When: the player disconnects
		manager.Disconnect("p1", session)

		// Then: the session is gone
		_, err = manager.MakeTurn(ctx, "p1", 0)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)

		// disconnecting twice is harmless
		manager.Disconnect("p1", session)
	})

	t.Run("Stale connection leaves the newer session alone", func(t *testing.T) {
		// Given: the same player connected twice
		repo := &mockPlayerRepo{}
		repo.On("GetByID", mock.Anything, "p1").Return(&entity.Player{ID: "p1", Settings: entity.DefaultSettings()}, nil).Twice()
		manager := newManager(t, repo)
		_, first, err := manager.Connect(ctx, "p1", &endListener{})
		require.NoError(t, err)
		_, second, err := manager.Connect(ctx, "p1", &endListener{})
		require.NoError(t, err)

		// When: the first connection goes away
		manager.Disconnect("p1", first)

		// Then: the newer game still accepts moves
		snapshot, err := manager.MakeTurn(ctx, "p1", 0)
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, snapshot.Board[0])
		assert.Equal(t, entity.PlayerX, second.Snapshot().Board[0])
	})
}
