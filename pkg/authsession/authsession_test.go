package authsession

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndLookup(t *testing.T) {
	s := New()
	token, err := s.Issue("alice")
	require.NoError(t, err)

	username, ok := s.Lookup(token)
	require.True(t, ok)
	assert.Equal(t, "alice", username)
}

func TestRevoke(t *testing.T) {
	s := New()
	token, err := s.Issue("alice")
	require.NoError(t, err)

	s.Revoke(token)
	_, ok := s.Lookup(token)
	assert.False(t, ok)
}

func TestLookupUnknownToken(t *testing.T) {
	s := New()
	_, ok := s.Lookup("bogus")
	assert.False(t, ok)
}
