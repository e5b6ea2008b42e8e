package sweeper

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/fenwick/pkg/types"
)

type fakeStore struct {
	mu     sync.Mutex
	tasks  []*types.Task
	status map[string]types.TaskStatus
}

func (f *fakeStore) ListPendingOrDispatched() ([]*types.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Task
	for _, t := range f.tasks {
		st := t.Status
		if s, ok := f.status[t.ID]; ok {
			st = s
		}
		if st == types.TaskPending || st == types.TaskDispatched {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(taskID string, status types.TaskStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == nil {
		f.status = map[string]types.TaskStatus{}
	}
	f.status[taskID] = status
	return nil
}

type fakeBus struct {
	mu      sync.Mutex
	signals []string
}

func (f *fakeBus) Signal(taskID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, taskID)
}

func TestSweepCompletesExpiredTasksAndSignals(t *testing.T) {
	store := &fakeStore{tasks: []*types.Task{
		{ID: "expired", Status: types.TaskDispatched, EndTime: time.Now().Add(-time.Second)},
		{ID: "future", Status: types.TaskPending, EndTime: time.Now().Add(time.Hour)},
	}}
	bus := &fakeBus{}

	s := New(store, bus, 20*time.Millisecond)
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.status["expired"] == types.TaskCompleted
	}, time.Second, 10*time.Millisecond)

	bus.mu.Lock()
	defer bus.mu.Unlock()
	assert.Contains(t, bus.signals, "expired")

	store.mu.Lock()
	_, futureTouched := store.status["future"]
	store.mu.Unlock()
	assert.False(t, futureTouched)
}
