package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-ai/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

// sweepInterval - how often writes purge expired records.
const sweepInterval = time.Minute

type memoryRecord struct {
	player    entity.Player
	expiresAt time.Time
}

type memoryPlayer struct {
	mu        sync.RWMutex
	players   map[string]memoryRecord
	ttl       time.Duration
	lastSweep time.Time

	now func() time.Time
}

// NewMemoryPlayerRepository - used when Redis is disabled. Records expire
// after ttl like their Redis counterparts; a zero ttl keeps them forever.
func NewMemoryPlayerRepository(ttl time.Duration) PlayerRepository {
	return &memoryPlayer{
		players: make(map[string]memoryRecord),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (that *memoryPlayer) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	now := that.now()
	that.sweep(now)

	record := memoryRecord{player: *player}
	if that.ttl > 0 {
		record.expiresAt = now.Add(that.ttl)
	}
	that.players[player.ID] = record

	return nil
}

func (that *memoryPlayer) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	record, ok := that.players[id]
	if !ok || record.expired(that.now()) {
		return nil, apperror.ErrPlayerNotFound
	}

	return &record.player, nil
}

func (that *memoryPlayer) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	record, ok := that.players[id]
	if !ok || record.expired(that.now()) {
		return apperror.ErrPlayerNotFound
	}

	delete(that.players, id)

	return nil
}

// sweep - drops expired records at most once per sweepInterval. Caller holds the lock.
func (that *memoryPlayer) sweep(now time.Time) {
	if that.ttl <= 0 || now.Sub(that.lastSweep) < sweepInterval {
		return
	}

	for id, record := range that.players {
		if record.expired(now) {
			delete(that.players, id)
		}
	}
	that.lastSweep = now
}

func (that memoryRecord) expired(now time.Time) bool {
	return !that.expiresAt.IsZero() && !now.Before(that.expiresAt)
}
