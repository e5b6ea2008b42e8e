package taskstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/fenwick/pkg/types"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.db")
	s, err := NewBoltStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTask(id string) *types.Task {
	now := time.Now().UTC()
	return &types.Task{
		ID:         id,
		OwnerToken: "tok-1",
		Keywords:   "flood",
		Categories: []string{"general"},
		Locations:  []string{"international"},
		StartTime:  now,
		EndTime:    now.Add(2 * time.Minute),
		Status:     types.TaskPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	task := sampleTask("t1")
	require.NoError(t, s.Create(task))

	got, err := s.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, task.Keywords, got.Keywords)
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt) || !got.UpdatedAt.Before(got.CreatedAt))
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get("nope")
	assert.Error(t, err)
}

func TestUpdateStatusRespectsLifecycleDAG(t *testing.T) {
	s := newTestStore(t)
	task := sampleTask("t1")
	require.NoError(t, s.Create(task))

	require.NoError(t, s.UpdateStatus("t1", types.TaskDispatched))
	got, err := s.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, types.TaskDispatched, got.Status)
	assert.True(t, got.UpdatedAt.After(task.UpdatedAt) || got.UpdatedAt.Equal(task.UpdatedAt))

	// DISPATCHED -> FAILED is not a legal transition.
	err = s.UpdateStatus("t1", types.TaskFailed)
	assert.Error(t, err)

	require.NoError(t, s.UpdateStatus("t1", types.TaskCompleted))
	got, err = s.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, types.TaskCompleted, got.Status)
}

func TestListFiltersByTokenAndStatusOrderedDescending(t *testing.T) {
	s := newTestStore(t)
	t1 := sampleTask("t1")
	t1.CreatedAt = time.Now().UTC().Add(-time.Minute)
	t2 := sampleTask("t2")
	t2.OwnerToken = "tok-2"
	t3 := sampleTask("t3")
	t3.Status = types.TaskFailed

	require.NoError(t, s.Create(t1))
	require.NoError(t, s.Create(t2))
	require.NoError(t, s.Create(t3))

	byToken, err := s.List(Filter{Token: "tok-1"})
	require.NoError(t, err)
	require.Len(t, byToken, 2)
	assert.Equal(t, "t3", byToken[0].ID) // most recently created first

	byStatus, err := s.List(Filter{Statuses: []types.TaskStatus{types.TaskFailed}})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "t3", byStatus[0].ID)
}

func TestListPagination(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		task := sampleTask(string(rune('a' + i)))
		require.NoError(t, s.Create(task))
	}
	page, err := s.List(Filter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestCountAndListPendingOrDispatched(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create(sampleTask("t1")))
	t2 := sampleTask("t2")
	t2.Status = types.TaskCompleted
	require.NoError(t, s.Create(t2))

	count, err := s.Count(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	pending, err := s.ListPendingOrDispatched()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "t1", pending[0].ID)
}
