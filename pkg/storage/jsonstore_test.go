package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PancyStudios/PancyModGo/pkg/models"
)

func newTestJSONStore(t *testing.T) (*JSONStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guilds.json")
	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestJSONStoreGetCreatesRecord(t *testing.T) {
	store, _ := newTestJSONStore(t)
	ctx := context.Background()

	rec, err := store.Get(ctx, "guild-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.GuildID != "guild-1" {
		t.Errorf("guildId = %q", rec.GuildID)
	}
	if rec.Cases != 0 || len(rec.Mutes) != 0 || len(rec.Warns) != 0 {
		t.Errorf("fresh record not empty: %+v", rec)
	}
}

func TestJSONStoreRoundTrip(t *testing.T) {
	store, path := newTestJSONStore(t)
	ctx := context.Background()

	_, err := store.Update(ctx, "guild-1", func(rec *models.GuildRecord) error {
		rec.MuteRoleID = "role-1"
		rec.Mutes = append(rec.Mutes, models.MuteRecord{
			UID:      "uid-1",
			ID:       rec.NextCase(),
			Type:     models.MuteTypeTemp,
			GuildID:  "guild-1",
			MemberID: "member-1",
			Reason:   "prueba",
		})
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	// A second store over the same file sees the persisted state
	reopened, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer reopened.Close()

	rec, err := reopened.Get(ctx, "guild-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.MuteRoleID != "role-1" || rec.Cases != 1 || len(rec.Mutes) != 1 {
		t.Fatalf("persisted record = %+v", rec)
	}
	if rec.Mutes[0].UID != "uid-1" {
		t.Errorf("mute uid = %q", rec.Mutes[0].UID)
	}
}

func TestJSONStoreCreateExisting(t *testing.T) {
	store, _ := newTestJSONStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "guild-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, "guild-1"); !errors.Is(err, ErrGuildExists) {
		t.Fatalf("second Create error = %v, want ErrGuildExists", err)
	}
}

func TestJSONStoreUpdateErrorAborts(t *testing.T) {
	store, _ := newTestJSONStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := store.Update(ctx, "guild-1", func(rec *models.GuildRecord) error {
		rec.Cases = 99
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update error = %v, want boom", err)
	}

	rec, err := store.Get(ctx, "guild-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Cases != 0 {
		t.Errorf("cases = %d, mutation persisted despite error", rec.Cases)
	}
}

func TestJSONStoreGuildIDs(t *testing.T) {
	store, _ := newTestJSONStore(t)
	ctx := context.Background()

	for _, id := range []string{"guild-1", "guild-2"} {
		if _, err := store.Get(ctx, id); err != nil {
			t.Fatalf("Get %s: %v", id, err)
		}
	}

	ids, err := store.GuildIDs(ctx)
	if err != nil {
		t.Fatalf("GuildIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids = %v, want 2 entries", ids)
	}
}

func TestJSONStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guilds.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	if _, err := NewJSONStore(path); !errors.Is(err, ErrCorruptStorage) {
		t.Fatalf("error = %v, want ErrCorruptStorage", err)
	}
}
