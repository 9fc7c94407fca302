package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/cockroachdb/pebble"
)

const guildKeyPrefix = "guild/"

// PebbleStore keeps one JSON-encoded guild record per key in an embedded
// Pebble database. Unlike the flat file, a mutation touches only the guild
// it belongs to.
type PebbleStore struct {
	db    *pebble.DB
	locks *guildLocks
}

// NewPebbleStore opens the Pebble database at path, creating it if needed
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble database: %w", err)
	}

	return &PebbleStore{
		db:    db,
		locks: newGuildLocks(),
	}, nil
}

func guildKey(guildID string) []byte {
	return []byte(guildKeyPrefix + guildID)
}

// load fetches and decodes a record; found is false when the key is absent
func (s *PebbleStore) load(guildID string) (*models.GuildRecord, bool, error) {
	raw, closer, err := s.db.Get(guildKey(guildID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading guild %s: %w", guildID, err)
	}
	defer closer.Close()

	var rec models.GuildRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, fmt.Errorf("%w: guild %s", ErrCorruptStorage, guildID)
	}
	return &rec, true, nil
}

func (s *PebbleStore) save(guildID string, record *models.GuildRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("serializing guild %s: %w", guildID, err)
	}
	if err := s.db.Set(guildKey(guildID), raw, pebble.Sync); err != nil {
		return fmt.Errorf("writing guild %s: %w", guildID, err)
	}
	return nil
}

// Get returns the guild's record, creating the default one on first access
func (s *PebbleStore) Get(ctx context.Context, guildID string) (*models.GuildRecord, error) {
	unlock := s.locks.lock(guildID)
	defer unlock()

	rec, found, err := s.load(guildID)
	if err != nil {
		return nil, err
	}
	if found {
		return rec, nil
	}

	rec = models.NewGuildRecord(guildID)
	if err := s.save(guildID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create inserts the default record, failing if the guild is already present
func (s *PebbleStore) Create(ctx context.Context, guildID string) (*models.GuildRecord, error) {
	unlock := s.locks.lock(guildID)
	defer unlock()

	_, found, err := s.load(guildID)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, fmt.Errorf("%w: %s", ErrGuildExists, guildID)
	}

	rec := models.NewGuildRecord(guildID)
	if err := s.save(guildID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Put overwrites the stored record, last writer wins
func (s *PebbleStore) Put(ctx context.Context, guildID string, record *models.GuildRecord) error {
	unlock := s.locks.lock(guildID)
	defer unlock()
	return s.save(guildID, record)
}

// Update runs fn over a fresh copy of the record with the guild's lock held
// for the whole read-modify-write cycle. Nothing is persisted when fn fails.
func (s *PebbleStore) Update(ctx context.Context, guildID string, fn func(*models.GuildRecord) error) (*models.GuildRecord, error) {
	unlock := s.locks.lock(guildID)
	defer unlock()

	rec, found, err := s.load(guildID)
	if err != nil {
		return nil, err
	}
	if !found {
		rec = models.NewGuildRecord(guildID)
	}

	if err := fn(rec); err != nil {
		return nil, err
	}
	if err := s.save(guildID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GuildIDs lists every guild present in the database
func (s *PebbleStore) GuildIDs(ctx context.Context) ([]string, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(guildKeyPrefix),
		UpperBound: []byte(guildKeyPrefix + "\xff"),
	})
	if err != nil {
		return nil, fmt.Errorf("iterating guilds: %w", err)
	}
	defer iter.Close()

	var ids []string
	for iter.First(); iter.Valid(); iter.Next() {
		ids = append(ids, string(iter.Key()[len(guildKeyPrefix):]))
	}
	return ids, iter.Error()
}

// Close closes the underlying database
func (s *PebbleStore) Close() error {
	return s.db.Close()
}
