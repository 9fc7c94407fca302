// Package storage provides the persistence layer for guild moderation records.
// Three interchangeable backends implement the same Store contract: a flat
// JSON file, an embedded Pebble database and MongoDB.
package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/PancyStudios/PancyModGo/pkg/models"
)

var (
	// ErrGuildExists is returned by Create when a record for the guild is already present
	ErrGuildExists = errors.New("guild record already exists")

	// ErrCorruptStorage is returned when the backing data does not round-trip
	// as a guild record. The store never fabricates data over a corrupt backend.
	ErrCorruptStorage = errors.New("storage contains malformed data")
)

// Store is the persistence contract the ledgers code against.
//
// Get auto-creates a default record on first access. Put is a full overwrite
// with last-writer-wins semantics. Update runs a read-modify-write cycle with
// the guild's lock held for the whole cycle, so two concurrent mutations of
// the same guild can never interleave between the read and the write; if fn
// returns an error nothing is persisted.
type Store interface {
	Get(ctx context.Context, guildID string) (*models.GuildRecord, error)
	Create(ctx context.Context, guildID string) (*models.GuildRecord, error)
	Put(ctx context.Context, guildID string, record *models.GuildRecord) error
	Update(ctx context.Context, guildID string, fn func(*models.GuildRecord) error) (*models.GuildRecord, error)
	GuildIDs(ctx context.Context) ([]string, error)
	Close() error
}

// guildLocks hands out one mutex per guild id so read-modify-write cycles
// on different guilds don't serialize against each other
type guildLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newGuildLocks() *guildLocks {
	return &guildLocks{locks: make(map[string]*sync.Mutex)}
}

func (g *guildLocks) lock(guildID string) func() {
	g.mu.Lock()
	l, ok := g.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[guildID] = l
	}
	g.mu.Unlock()

	l.Lock()
	return l.Unlock
}
