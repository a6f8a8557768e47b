package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapfeed/internal/backend"
)

func TestSessionLifecycle(t *testing.T) {
	s := &Session{}
	assert.False(t, s.LoggedIn())
	assert.Empty(t, s.Token())

	_, err := s.User()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	s.Begin(backend.Credentials{
		User:         backend.User{ID: "u1", Username: "alice"},
		SessionToken: "tok-123",
	})
	assert.True(t, s.LoggedIn())
	assert.Equal(t, "tok-123", s.Token())

	user, err := s.User()
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	s.End()
	assert.False(t, s.LoggedIn())
	assert.Empty(t, s.Token())
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSavedSession)

	s := &Session{}
	s.Begin(backend.Credentials{
		User:         backend.User{ID: "u1", Username: "alice"},
		SessionToken: "tok-123",
	})
	require.NoError(t, store.Save(s.Snapshot()))

	state, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", state.Token)
	assert.Equal(t, "alice", state.User.Username)

	restored := &Session{}
	restored.Restore(state)
	assert.True(t, restored.LoggedIn())
	assert.Equal(t, "tok-123", restored.Token())
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	require.NoError(t, store.Save(State{Token: "tok"}))
	require.NoError(t, store.Clear())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSavedSession)

	// Clearing twice is fine.
	assert.NoError(t, store.Clear())
}
