// Package persistence provides SQLite-backed storage for user accounts and
// pet saves. A save is the whole creature list as JSON; the fingerprint
// column lets the autosave loop skip writes when nothing meaningful changed.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ribbitworks/slimepond/internal/creature"
)

// AnonymousUser keys the save slot used when nobody is logged in.
const AnonymousUser = "local"

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS saves (
		user_id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// User is an account row.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// CreateUser inserts a new account. Username uniqueness is enforced by the
// schema; a duplicate surfaces as an error.
func (db *DB) CreateUser(u User) error {
	_, err := db.conn.Exec(
		"INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)",
		u.ID, u.Username, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.Username, err)
	}
	return nil
}

// UserByName looks up an account. found is false when it does not exist.
func (db *DB) UserByName(username string) (User, bool, error) {
	var u User
	err := db.conn.Get(&u, "SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

// SavePayload is the serialized shape of a pet save.
type SavePayload struct {
	Creatures        []*creature.Creature `json:"creatures"`
	ActiveCreatureID string               `json:"activeCreatureId"`
	DebugTime        *time.Time           `json:"debugTime,omitempty"`
}

// SaveState upserts a user's save slot.
func (db *DB) SaveState(userID string, payload SavePayload, fingerprint string) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal save: %w", err)
	}
	_, err = db.conn.Exec(
		"INSERT OR REPLACE INTO saves (user_id, payload, fingerprint, updated_at) VALUES (?, ?, ?, ?)",
		userID, string(raw), fingerprint, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("write save for %s: %w", userID, err)
	}
	return nil
}

// LoadState reads a user's save slot. found is false when no save exists.
func (db *DB) LoadState(userID string) (SavePayload, bool, error) {
	var raw string
	err := db.conn.Get(&raw, "SELECT payload FROM saves WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return SavePayload{}, false, nil
	}
	if err != nil {
		return SavePayload{}, false, err
	}

	var payload SavePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return SavePayload{}, false, fmt.Errorf("decode save for %s: %w", userID, err)
	}
	return payload, true, nil
}

// LastFingerprint returns the fingerprint of the user's stored save, or ""
// when no save exists.
func (db *DB) LastFingerprint(userID string) (string, error) {
	var fp string
	err := db.conn.Get(&fp, "SELECT fingerprint FROM saves WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return fp, err
}
