package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/eventbus"
	"github.com/roach88/sprintchef/internal/state"
	"github.com/roach88/sprintchef/internal/testutil"
)

func testSnapshot(t *testing.T) state.Snapshot {
	t.Helper()
	gs := state.New(config.Default(), eventbus.New(), testutil.NewRolls(0.5))
	_, err := gs.Update(state.Patch{
		Day:          state.Ptr(3),
		DishProgress: state.Ptr(42),
		Skills:       map[string]int{"knife": 4},
	})
	require.NoError(t, err)
	return gs.Snapshot()
}

func TestCreateSession(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	cfg := config.Hard()
	sess, err := s.CreateSession(ctx, 7, cfg)
	require.NoError(t, err)
	assert.Equal(t, "test-session-0001", sess.ID)
	assert.Equal(t, testutil.Epoch, sess.CreatedAt)

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Seed)
	assert.Equal(t, cfg, got.Config)
	assert.Equal(t, testutil.Epoch, got.CreatedAt)
}

func TestListSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)

	createTestSession(t, s)
	createTestSession(t, s)

	sessions, err = s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "test-session-0001", sessions[0].ID)
	assert.Equal(t, "test-session-0002", sessions[1].ID)
	assert.Equal(t, int64(42), sessions[1].Seed)
}

func TestGetSession_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetSession(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveSnapshot_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sess := createTestSession(t, s)
	snap := testSnapshot(t)

	require.NoError(t, s.SaveSnapshot(ctx, "slot1", sess.ID, 17, snap))

	save, err := s.LoadSnapshot(ctx, "slot1")
	require.NoError(t, err)
	assert.Equal(t, snap, save.Snapshot)
	assert.Equal(t, 3, save.Day)
	assert.Equal(t, int64(17), save.Seq)
	assert.Equal(t, sess.ID, save.SessionID)
}

func TestSaveSnapshot_Overwrites(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sess := createTestSession(t, s)
	snap := testSnapshot(t)

	require.NoError(t, s.SaveSnapshot(ctx, "slot1", sess.ID, 1, snap))
	snap.Day = 5
	require.NoError(t, s.SaveSnapshot(ctx, "slot1", sess.ID, 9, snap))

	saves, err := s.ListSaves(ctx)
	require.NoError(t, err)
	require.Len(t, saves, 1)
	assert.Equal(t, 5, saves[0].Day)
	assert.Equal(t, int64(9), saves[0].Seq)
}

func TestSaveSnapshot_Rejects(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	assert.Error(t, s.SaveSnapshot(ctx, "", "any", 0, testSnapshot(t)))
	assert.Error(t, s.SaveSnapshot(ctx, "slot", "unknown-session", 0, testSnapshot(t)),
		"foreign key on session_id")
}

func TestLoadSnapshot_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LoadSnapshot(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListSaves_OrderedBySlot(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sess := createTestSession(t, s)

	empty, err := s.ListSaves(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, slot := range []string{"b", "a", "c"} {
		require.NoError(t, s.SaveSnapshot(ctx, slot, sess.ID, 0, testSnapshot(t)))
	}
	saves, err := s.ListSaves(ctx)
	require.NoError(t, err)
	require.Len(t, saves, 3)
	assert.Equal(t, "a", saves[0].Slot)
	assert.Equal(t, "b", saves[1].Slot)
	assert.Equal(t, "c", saves[2].Slot)
}

func TestDeleteSave(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sess := createTestSession(t, s)
	require.NoError(t, s.SaveSnapshot(ctx, "slot1", sess.ID, 0, testSnapshot(t)))

	ok, err := s.DeleteSave(ctx, "slot1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DeleteSave(ctx, "slot1")
	require.NoError(t, err)
	assert.False(t, ok)
}
