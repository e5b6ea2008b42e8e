package fleet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginHeartbeat(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register("w1", "secret"))

	err := r.Register("w1", "secret")
	assert.Error(t, err, "duplicate registration must Conflict")

	token, err := r.Login("w1", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	require.NoError(t, r.Heartbeat(token, time.Now().UTC()))

	_, err = r.Login("w1", "wrong-secret")
	assert.Error(t, err)
}

func TestLoginReissuesTokenAndInvalidatesPrior(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register("w1", "secret"))

	first, err := r.Login("w1", "secret")
	require.NoError(t, err)

	second, err := r.Login("w1", "secret")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	err = r.Heartbeat(first, time.Now().UTC())
	assert.Error(t, err, "prior token must no longer validate")

	err = r.Heartbeat(second, time.Now().UTC())
	assert.NoError(t, err)
}

func TestAssignMergesWithoutDuplicatesAndCountsOnce(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register("w1", "secret"))
	token, err := r.Login("w1", "secret")
	require.NoError(t, err)

	end := time.Now().Add(time.Minute)
	require.NoError(t, r.Assign(token, "t1", []string{"s1"}, end))
	require.NoError(t, r.Assign(token, "t1", []string{"s1", "s2"}, end))

	snap := r.Snapshot(time.Hour)
	require.Len(t, snap, 1)
	assert.Equal(t, 1, snap[0].AssignedCount)

	tasks, err := r.AssignedTasksFor(token)
	require.NoError(t, err)
	require.Contains(t, tasks, "t1")
	assert.ElementsMatch(t, []string{"s1", "s2"}, tasks["t1"].Sources)
}

func TestHeartbeatUnknownTokenFails(t *testing.T) {
	r := NewRegistry(nil)
	err := r.Heartbeat("bogus", time.Now())
	assert.Error(t, err)
}

func TestPurgeExpiredRemovesPastAssignments(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register("w1", "secret"))
	token, err := r.Login("w1", "secret")
	require.NoError(t, err)

	require.NoError(t, r.Assign(token, "t1", []string{"s1"}, time.Now().Add(-time.Minute)))
	require.NoError(t, r.Assign(token, "t2", []string{"s2"}, time.Now().Add(time.Hour)))

	removed := r.PurgeExpired()
	require.Len(t, removed, 1)
	assert.Equal(t, "t1", removed[0].TaskID)

	tasks, err := r.AssignedTasksFor(token)
	require.NoError(t, err)
	assert.NotContains(t, tasks, "t1")
	assert.Contains(t, tasks, "t2")
}

func TestFailoverDeadRemovesWorkerAndReassigns(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register("w1", "secret"))
	token, err := r.Login("w1", "secret")
	require.NoError(t, err)
	require.NoError(t, r.Heartbeat(token, time.Now().Add(-time.Hour)))
	require.NoError(t, r.Assign(token, "t1", []string{"s1"}, time.Now().Add(time.Minute)))

	var reassignedTo string
	results := r.FailoverDead(10*time.Second, func(taskID string, sources []string, endTime time.Time) (string, error) {
		reassignedTo = "w2"
		return "w2", nil
	})

	require.Len(t, results, 1)
	assert.Equal(t, "w1", results[0].DeadWorker)
	assert.Equal(t, "t1", results[0].TaskID)
	assert.Equal(t, "w2", results[0].NewWorker)
	assert.Equal(t, "w2", reassignedTo)

	err = r.Heartbeat(token, time.Now())
	assert.Error(t, err, "dead worker's token must be invalidated")
}

func TestSnapshotExcludesStaleWorkers(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register("w1", "secret"))
	token, err := r.Login("w1", "secret")
	require.NoError(t, err)
	require.NoError(t, r.Heartbeat(token, time.Now().Add(-time.Hour)))

	assert.Empty(t, r.Snapshot(time.Minute))
}
