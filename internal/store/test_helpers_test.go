package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/testutil"
)

// createTestStore creates a store in a temp dir with predictable session ids
// and a frozen wall clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	clock := testutil.NewFakeClock(testutil.Epoch)
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequentialIDs("")),
		WithNow(clock.Now),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession records a session with the default balance.
func createTestSession(t *testing.T, s *Store) Session {
	t.Helper()
	sess, err := s.CreateSession(context.Background(), 42, config.Default())
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return sess
}
