package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ribbitworks/slimepond/internal/creature"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "pond.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveRoundTrip(t *testing.T) {
	db := openTestDB(t)

	f := creature.NewFactory(1, time.Now)
	c := f.Spawn(creature.TypeSlime, creature.ColorGreen, 120)
	c.Relationship.Affection = 42
	c.FirstName = "Bloop"

	payload := SavePayload{Creatures: []*creature.Creature{c}, ActiveCreatureID: c.ID}
	if err := db.SaveState(AnonymousUser, payload, "fp-1"); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, found, err := db.LoadState(AnonymousUser)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if len(got.Creatures) != 1 {
		t.Fatalf("creatures = %d, want 1", len(got.Creatures))
	}
	if got.Creatures[0].FirstName != "Bloop" || got.Creatures[0].Relationship.Affection != 42 {
		t.Errorf("restored creature lost fields: %+v", got.Creatures[0])
	}
	if got.ActiveCreatureID != c.ID {
		t.Errorf("active id = %q, want %q", got.ActiveCreatureID, c.ID)
	}

	fp, err := db.LastFingerprint(AnonymousUser)
	if err != nil || fp != "fp-1" {
		t.Errorf("fingerprint = %q err=%v, want fp-1", fp, err)
	}
}

func TestLoadMissingSave(t *testing.T) {
	db := openTestDB(t)

	_, found, err := db.LoadState("nobody")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Error("found save for unknown user")
	}
	fp, err := db.LastFingerprint("nobody")
	if err != nil || fp != "" {
		t.Errorf("fingerprint = %q err=%v, want empty", fp, err)
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	db := openTestDB(t)

	u := User{ID: "u-1", Username: "frog", PasswordHash: "x", CreatedAt: time.Now()}
	if err := db.CreateUser(u); err != nil {
		t.Fatalf("create: %v", err)
	}
	u.ID = "u-2"
	if err := db.CreateUser(u); err == nil {
		t.Error("duplicate username accepted")
	}

	got, found, err := db.UserByName("frog")
	if err != nil || !found {
		t.Fatalf("lookup: found=%v err=%v", found, err)
	}
	if got.ID != "u-1" {
		t.Errorf("id = %q, want u-1", got.ID)
	}
}
