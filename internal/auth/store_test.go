package auth

import (
	"testing"
	"time"

	"github.com/desertthunder/spotctl/internal/shared"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewSQLiteStore(db)
}

func TestSQLiteStore(t *testing.T) {
	expiry := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)

	t.Run("Load Empty", func(t *testing.T) {
		store := newTestSQLiteStore(t)

		state, err := store.Load()
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if state != nil {
			t.Errorf("expected nil state from empty store, got %+v", state)
		}
	})

	t.Run("Save And Load", func(t *testing.T) {
		store := newTestSQLiteStore(t)

		err := store.Save(StoredState{AccessToken: "AT1", RefreshToken: "RT1", ExpiresAt: expiry})
		if err != nil {
			t.Fatalf("save failed: %v", err)
		}

		state, err := store.Load()
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if state == nil {
			t.Fatal("expected stored state")
		}
		if state.AccessToken != "AT1" || state.RefreshToken != "RT1" {
			t.Errorf("unexpected state: %+v", state)
		}
		if !state.ExpiresAt.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, state.ExpiresAt)
		}
	})

	t.Run("Save Overwrites The Group", func(t *testing.T) {
		store := newTestSQLiteStore(t)

		store.Save(StoredState{AccessToken: "AT1", RefreshToken: "RT1", ExpiresAt: expiry})
		newExpiry := expiry.Add(time.Hour)
		if err := store.Save(StoredState{AccessToken: "AT2", RefreshToken: "RT2", ExpiresAt: newExpiry}); err != nil {
			t.Fatalf("second save failed: %v", err)
		}

		state, err := store.Load()
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if state.AccessToken != "AT2" || state.RefreshToken != "RT2" || !state.ExpiresAt.Equal(newExpiry) {
			t.Errorf("expected fully replaced group, got %+v", state)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		store := newTestSQLiteStore(t)

		store.Save(StoredState{AccessToken: "AT1", RefreshToken: "RT1", ExpiresAt: expiry})
		if err := store.Clear(); err != nil {
			t.Fatalf("clear failed: %v", err)
		}

		state, err := store.Load()
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if state != nil {
			t.Errorf("expected nil state after clear, got %+v", state)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	expiry := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)

	store := NewMemoryStore()

	if state, err := store.Load(); err != nil || state != nil {
		t.Errorf("expected empty store, got state=%+v err=%v", state, err)
	}

	if err := store.Save(StoredState{AccessToken: "AT1", RefreshToken: "RT1", ExpiresAt: expiry}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	state, err := store.Load()
	if err != nil || state == nil {
		t.Fatalf("load failed: state=%+v err=%v", state, err)
	}

	// Load returns a copy; mutating it must not leak into the store.
	state.AccessToken = "mutated"
	reloaded, _ := store.Load()
	if reloaded.AccessToken != "AT1" {
		t.Errorf("expected stored AT1, got %s", reloaded.AccessToken)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if state, _ := store.Load(); state != nil {
		t.Errorf("expected nil after clear, got %+v", state)
	}
}
