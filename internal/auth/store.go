package auth

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// Keys under which the credential group is persisted.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyExpiresAt    = "expires_at"
)

// StoredState is the durable credential group. Invariant: a non-empty
// AccessToken always has a matching ExpiresAt (the group is written as one
// logical update).
type StoredState struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// CredentialStore persists the credential group across process restarts.
// The [Coordinator] is its only writer.
type CredentialStore interface {
	// Load returns the stored state, or nil when nothing is stored.
	Load() (*StoredState, error)

	// Save writes all three fields as one atomic update.
	Save(state StoredState) error

	// Clear removes the stored credential group.
	Clear() error
}

// SQLiteStore persists the credential group in the credentials table as
// key/value rows, written together in a single transaction.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store backed by the given database connection.
// The credentials table must exist (see shared.RunMigrations).
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load reads the credential group. A missing access token row means no
// credential is stored and Load returns nil.
func (s *SQLiteStore) Load() (*StoredState, error) {
	rows, err := s.db.Query("SELECT key, value FROM credentials WHERE key IN (?, ?, ?)",
		keyAccessToken, keyRefreshToken, keyExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan credential row: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	if values[keyAccessToken] == "" {
		return nil, nil
	}

	state := &StoredState{
		AccessToken:  values[keyAccessToken],
		RefreshToken: values[keyRefreshToken],
	}

	if raw := values[keyExpiresAt]; raw != "" {
		expiry, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored expiration %q: %w", raw, err)
		}
		state.ExpiresAt = expiry
	}

	return state, nil
}

// Save upserts all three rows in one transaction.
func (s *SQLiteStore) Save(state StoredState) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`

	pairs := [][2]string{
		{keyAccessToken, state.AccessToken},
		{keyRefreshToken, state.RefreshToken},
		{keyExpiresAt, state.ExpiresAt.Format(time.RFC3339)},
	}

	for _, pair := range pairs {
		if _, err := tx.Exec(query, pair[0], pair[1]); err != nil {
			return fmt.Errorf("failed to write credential %s: %w", pair[0], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit credentials: %w", err)
	}

	return nil
}

// Clear deletes the credential group in one transaction.
func (s *SQLiteStore) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM credentials WHERE key IN (?, ?, ?)",
		keyAccessToken, keyRefreshToken, keyExpiresAt); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	return tx.Commit()
}

// MemoryStore is an in-memory [CredentialStore] for tests and ephemeral
// sessions.
type MemoryStore struct {
	mu    sync.Mutex
	state *StoredState
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*StoredState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	state := *m.state
	return &state, nil
}

func (m *MemoryStore) Save(state StoredState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &state
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	return nil
}
