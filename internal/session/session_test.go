package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sporthub-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoUser() *models.User {
	return &models.User{
		ID:       "550e8400-e29b-41d4-a716-446655440000",
		Email:    "demo@sporthub.test",
		Name:     "Demo User",
		LevelTag: models.DefaultLevelTag,
		Active:   true,
	}
}

func TestSession_LoginPersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	s := New(store)
	assert.False(t, s.IsLoggedIn())
	_, ok := s.Viewer()
	assert.False(t, ok)

	require.NoError(t, s.Login(ctx, demoUser()))
	assert.True(t, s.IsLoggedIn())

	// A fresh session on the same store picks the user up
	restored := New(store)
	require.NoError(t, restored.Restore(ctx))
	require.True(t, restored.IsLoggedIn())

	author, ok := restored.Viewer()
	require.True(t, ok)
	assert.Equal(t, "Demo User", author.Name)
	assert.Equal(t, "Fan", author.LevelTag)
}

func TestSession_LogoutClearsRecord(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	s := New(store)
	require.NoError(t, s.Login(ctx, demoUser()))
	s.MarkSubmitted(time.Now())

	_, err = os.Stat(filepath.Join(dir, UserStorageKey+".json"))
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsLoggedIn())
	assert.True(t, s.LastSubmitAt().IsZero())

	_, err = os.Stat(filepath.Join(dir, UserStorageKey+".json"))
	assert.True(t, os.IsNotExist(err))

	// Logging out twice is fine
	require.NoError(t, s.Logout(ctx))
}

func TestSession_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	s := New(store)
	_, err = s.UpdateProfile(ctx, models.ProfileUpdate{})
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, s.Login(ctx, demoUser()))

	name := "Coach Wang"
	updated, err := s.UpdateProfile(ctx, models.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Coach Wang", updated.Name)

	restored := New(store)
	require.NoError(t, restored.Restore(ctx))
	assert.Equal(t, "Coach Wang", restored.User().Name)
}

func TestSession_ViewerIsSnapshot(t *testing.T) {
	s := NewWithUser(demoUser())

	before, _ := s.Viewer()
	name := "Renamed"
	_, err := s.UpdateProfile(context.Background(), models.ProfileUpdate{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Demo User", before.Name)
	after, _ := s.Viewer()
	assert.Equal(t, "Renamed", after.Name)
}

func TestSession_MarkSubmittedIsMonotonic(t *testing.T) {
	s := New(nil)
	t1 := time.Date(2026, 2, 9, 12, 0, 10, 0, time.UTC)
	s.MarkSubmitted(t1)
	s.MarkSubmitted(t1.Add(-5 * time.Second))
	assert.Equal(t, t1, s.LastSubmitAt())
}

func TestFileStore_LoadMissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	user, err := store.Load(ctx, UserStorageKey)
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, os.WriteFile(filepath.Join(dir, UserStorageKey+".json"), []byte("{not json"), 0o600))
	_, err = store.Load(ctx, UserStorageKey)
	assert.Error(t, err)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx).Err())

	store := NewRedisStore(rdb, "test-"+time.Now().Format("150405.000000000"))
	defer store.Delete(ctx, UserStorageKey)

	s := New(store)
	require.NoError(t, s.Login(ctx, demoUser()))

	restored := New(store)
	require.NoError(t, restored.Restore(ctx))
	assert.Equal(t, "Demo User", restored.User().Name)

	require.NoError(t, s.Logout(ctx))
	user, err := store.Load(ctx, UserStorageKey)
	require.NoError(t, err)
	assert.Nil(t, user)
}
