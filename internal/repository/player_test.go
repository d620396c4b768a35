package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
	"github.com/rocketscienceinc/tictactoe-ai/testing/suite"
)

func newPlayer(id string) *entity.Player {
	return &entity.Player{
		ID: id,
		Settings: entity.Settings{
			HumanMark:  entity.PlayerO,
			Difficulty: entity.DifficultyMedium,
		},
	}
}

// checkRepository runs the behaviour every PlayerRepository shares.
func checkRepository(t *testing.T, ctx context.Context, playerRepo PlayerRepository) {
	t.Helper()

	t.Run("GetByID_Success", func(t *testing.T) {
		// Given: a stored player
		player := newPlayer("123")
		require.NoError(t, playerRepo.CreateOrUpdate(ctx, player))

		// When: GetByID is called with the existing ID
		retrievedPlayer, err := playerRepo.GetByID(ctx, player.ID)

		// Then: the stored settings come back
		require.NoError(t, err)
		assert.Equal(t, player, retrievedPlayer)
	})

	t.Run("CreateOrUpdate_Overwrites", func(t *testing.T) {
		// Given: a stored player
		player := newPlayer("456")
		require.NoError(t, playerRepo.CreateOrUpdate(ctx, player))

		// When: the player changes difficulty
		player.Settings.Difficulty = entity.DifficultyEasy
		require.NoError(t, playerRepo.CreateOrUpdate(ctx, player))

		// Then: the latest settings are returned
		retrievedPlayer, err := playerRepo.GetByID(ctx, player.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.DifficultyEasy, retrievedPlayer.Settings.Difficulty)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		// When: GetByID is called with a non-existent ID
		retrievedPlayer, err := playerRepo.GetByID(ctx, "9999999")

		// Then: an ErrPlayerNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)
		assert.Nil(t, retrievedPlayer)
	})

	t.Run("DeleteByID", func(t *testing.T) {
		// Given: a stored player
		player := newPlayer("789")
		require.NoError(t, playerRepo.CreateOrUpdate(ctx, player))

		// When: the player is deleted
		require.NoError(t, playerRepo.DeleteByID(ctx, player.ID))

		// Then: it can no longer be found and a second delete fails
		_, err := playerRepo.GetByID(ctx, player.ID)
		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)
		require.ErrorIs(t, playerRepo.DeleteByID(ctx, player.ID), apperror.ErrPlayerNotFound)
	})
}

func TestMemoryPlayerRepository(t *testing.T) {
	checkRepository(t, context.Background(), NewMemoryPlayerRepository(0))
	checkRepository(t, context.Background(), NewMemoryPlayerRepository(time.Hour))
}

func TestMemoryPlayerRepository_TTL(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	// Given: a memory repository with a one hour ttl and a controlled clock
	playerRepo := &memoryPlayer{
		players: make(map[string]memoryRecord),
		ttl:     time.Hour,
		now:     func() time.Time { return clock },
	}
	require.NoError(t, playerRepo.CreateOrUpdate(ctx, newPlayer("old")))

	// When: less than the ttl has passed
	clock = clock.Add(59 * time.Minute)

	// Then: the record is still there
	_, err := playerRepo.GetByID(ctx, "old")
	require.NoError(t, err)

	// When: the ttl has passed
	clock = clock.Add(2 * time.Minute)

	// Then: the record is gone for readers
	_, err = playerRepo.GetByID(ctx, "old")
	require.ErrorIs(t, err, apperror.ErrPlayerNotFound)

	// When: another player is stored
	require.NoError(t, playerRepo.CreateOrUpdate(ctx, newPlayer("new")))

	// Then: the expired record no longer takes memory
	assert.Len(t, playerRepo.players, 1)
	assert.Contains(t, playerRepo.players, "new")
}

func TestPlayerRepository(t *testing.T) {
	ctx, st := suite.New(t)

	checkRepository(t, ctx, NewPlayerRepository(st.Storage, 0))
}

func TestPlayerRepository_TTL(t *testing.T) {
	ctx, st := suite.New(t)

	// Given: a repository with a one hour ttl
	playerRepo := NewPlayerRepository(st.Storage, time.Hour)

	// When: a player is stored
	require.NoError(t, playerRepo.CreateOrUpdate(ctx, newPlayer("ttl")))

	// Then: the key expires
	ttl, err := st.Storage.TTL(ctx, playerKeyPrefix+"ttl").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)
}
