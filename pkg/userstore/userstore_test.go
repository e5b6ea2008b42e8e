package userstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRegisterAndAuthenticate(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Register("alice", "pw"))

	ok, err := s.Authenticate("alice", "pw")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Authenticate("alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisterDuplicateReturnsConflict(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Register("alice", "pw"))
	err := s.Register("alice", "pw2")
	assert.Error(t, err)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	s := newTestStore(t)
	ok, err := s.Authenticate("nobody", "pw")
	require.NoError(t, err)
	assert.False(t, ok)
}
