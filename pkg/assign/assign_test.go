package assign

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/fenwick/pkg/fleet"
)

func TestChooseLeastLoadedPicksFewestAssigned(t *testing.T) {
	now := time.Now()
	snap := []fleet.WorkerSnapshot{
		{Name: "w1", AssignedCount: 2, LastHeartbeat: now},
		{Name: "w2", AssignedCount: 0, LastHeartbeat: now},
		{Name: "w3", AssignedCount: 1, LastHeartbeat: now},
	}
	name, ok := ChooseLeastLoaded(snap)
	require.True(t, ok)
	assert.Equal(t, "w2", name)
}

func TestChooseLeastLoadedTiebreakIsEarliestHeartbeat(t *testing.T) {
	now := time.Now()
	snap := []fleet.WorkerSnapshot{
		{Name: "w1", AssignedCount: 0, LastHeartbeat: now},
		{Name: "w2", AssignedCount: 0, LastHeartbeat: now.Add(-time.Minute)},
	}
	name, ok := ChooseLeastLoaded(snap)
	require.True(t, ok)
	assert.Equal(t, "w2", name)
}

func TestChooseLeastLoadedNoWorkers(t *testing.T) {
	_, ok := ChooseLeastLoaded(nil)
	assert.False(t, ok)
}

type fakeRegistry struct {
	snapshot []fleet.WorkerSnapshot
	assigned map[string][]string
	failName string
}

func (f *fakeRegistry) Snapshot(time.Duration) []fleet.WorkerSnapshot { return f.snapshot }

func (f *fakeRegistry) AssignByName(name, taskID string, sources []string, endTime time.Time) error {
	if name == f.failName {
		return assertError{}
	}
	if f.assigned == nil {
		f.assigned = map[string][]string{}
	}
	f.assigned[name] = append(f.assigned[name], taskID)
	return nil
}

type assertError struct{}

func (assertError) Error() string { return "boom" }

func TestAssignBalancedSucceeds(t *testing.T) {
	r := &fakeRegistry{snapshot: []fleet.WorkerSnapshot{{Name: "w1", AssignedCount: 0}}}
	name, err := AssignBalanced(r, "t1", []string{"s1"}, time.Now().Add(time.Minute), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "w1", name)
	assert.Equal(t, []string{"t1"}, r.assigned["w1"])
}

func TestAssignBalancedNoWorkersAvailable(t *testing.T) {
	r := &fakeRegistry{}
	_, err := AssignBalanced(r, "t1", []string{"s1"}, time.Now().Add(time.Minute), time.Minute)
	assert.Error(t, err)
}
