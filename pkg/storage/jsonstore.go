package storage

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	json "github.com/goccy/go-json"
)

// JSONStore persists every guild record in a single flat JSON array.
// Every mutation re-reads, re-serializes and rewrites the whole file, which
// keeps the format trivially inspectable; writes go through a temp file plus
// rename so a crash mid-write never leaves a half-written store behind.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONStore opens (or creates) the storage file and validates its shape
func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warn("Creando archivo de almacenamiento...", "JSONStore")
		if err := s.writeAll([]models.GuildRecord{}); err != nil {
			return nil, err
		}
	}

	if err := s.Verify(); err != nil {
		return nil, err
	}
	return s, nil
}

// Verify checks that the backing file still parses as a guild record array
func (s *JSONStore) Verify() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.readAll()
	return err
}

// StartWatch re-validates the storage file on an interval, recreating it if
// it went missing. Returns a stop function.
func (s *JSONStore) StartWatch(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var stopOnce sync.Once

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.mu.Lock()
				if _, err := os.Stat(s.path); os.IsNotExist(err) {
					logger.Warn("El archivo de almacenamiento desapareció, recreándolo...", "JSONStore")
					if err := s.writeAll([]models.GuildRecord{}); err != nil {
						logger.Error("No se pudo recrear el archivo: "+err.Error(), "JSONStore")
					}
				} else if _, err := s.readAll(); err != nil {
					logger.Error("El archivo de almacenamiento contiene datos corruptos!", "JSONStore")
				}
				s.mu.Unlock()
			}
		}
	}()

	return func() {
		stopOnce.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// readAll parses the whole backing file. Callers must hold s.mu.
func (s *JSONStore) readAll() ([]models.GuildRecord, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading storage file: %w", err)
	}

	var records []models.GuildRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptStorage, s.path)
	}
	return records, nil
}

// writeAll rewrites the whole backing file atomically. Callers must hold s.mu
// (NewJSONStore calls it before the store is shared).
func (s *JSONStore) writeAll(records []models.GuildRecord) error {
	raw, err := json.MarshalIndent(records, "", "\t")
	if err != nil {
		return fmt.Errorf("serializing storage file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("writing storage file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing storage file: %w", err)
	}
	return nil
}

func findRecord(records []models.GuildRecord, guildID string) int {
	for i := range records {
		if records[i].GuildID == guildID {
			return i
		}
	}
	return -1
}

// Get returns the guild's record, creating the default one on first access
func (s *JSONStore) Get(ctx context.Context, guildID string) (*models.GuildRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(guildID)
}

func (s *JSONStore) getLocked(guildID string) (*models.GuildRecord, error) {
	records, err := s.readAll()
	if err != nil {
		return nil, err
	}

	if i := findRecord(records, guildID); i >= 0 {
		rec := records[i]
		return &rec, nil
	}

	rec := models.NewGuildRecord(guildID)
	records = append(records, *rec)
	if err := s.writeAll(records); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create inserts the default record, failing if the guild is already present
func (s *JSONStore) Create(ctx context.Context, guildID string) (*models.GuildRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}

	if findRecord(records, guildID) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrGuildExists, guildID)
	}

	rec := models.NewGuildRecord(guildID)
	records = append(records, *rec)
	if err := s.writeAll(records); err != nil {
		return nil, err
	}
	return rec, nil
}

// Put overwrites the stored record, last writer wins
func (s *JSONStore) Put(ctx context.Context, guildID string, record *models.GuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(guildID, record)
}

func (s *JSONStore) putLocked(guildID string, record *models.GuildRecord) error {
	records, err := s.readAll()
	if err != nil {
		return err
	}

	if i := findRecord(records, guildID); i >= 0 {
		records[i] = *record
	} else {
		records = append(records, *record)
	}
	return s.writeAll(records)
}

// Update runs fn over a fresh copy of the record with the file lock held for
// the whole read-modify-write cycle. Nothing is persisted when fn fails.
func (s *JSONStore) Update(ctx context.Context, guildID string, fn func(*models.GuildRecord) error) (*models.GuildRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.getLocked(guildID)
	if err != nil {
		return nil, err
	}
	if err := fn(rec); err != nil {
		return nil, err
	}
	if err := s.putLocked(guildID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GuildIDs lists every guild present in the file
func (s *JSONStore) GuildIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for i := range records {
		ids = append(ids, records[i].GuildID)
	}
	return ids, nil
}

// Close is a no-op; the file is rewritten on every mutation
func (s *JSONStore) Close() error {
	return nil
}
