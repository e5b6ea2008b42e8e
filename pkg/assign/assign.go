// Package assign is the Assignment Engine: pure selection logic over a
// fleet.Snapshot, directly grounded on the teacher's
// pkg/scheduler.selectNode (fewest-containers-wins), generalized to
// "fewest assigned tasks, ties broken by earliest heartbeat". Unlike the
// teacher's ticker-driven scheduler, assignment here is invoked
// synchronously from StartTask and from failover rather than polled — see
// DESIGN.md for that deviation.
package assign

import (
	"fmt"
	"sort"
	"time"

	"github.com/cuemby/fenwick/pkg/apierr"
	"github.com/cuemby/fenwick/pkg/fleet"
	"github.com/cuemby/fenwick/pkg/metrics"
)

// ChooseLeastLoaded returns the worker in snapshot with the fewest assigned
// tasks; it does no liveness filtering of its own (Registry.Snapshot(maxIdle)
// already limits the snapshot to live workers). Ties are broken by earliest
// last_heartbeat, matching the teacher's stable-sort tiebreak in
// selectNode. Returns ("", false) if snapshot is empty.
func ChooseLeastLoaded(snapshot []fleet.WorkerSnapshot) (string, bool) {
	if len(snapshot) == 0 {
		return "", false
	}

	candidates := append([]fleet.WorkerSnapshot(nil), snapshot...)
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].AssignedCount != candidates[j].AssignedCount {
			return candidates[i].AssignedCount < candidates[j].AssignedCount
		}
		return candidates[i].LastHeartbeat.Before(candidates[j].LastHeartbeat)
	})
	return candidates[0].Name, true
}

// Registry is the slice of fleet.Registry that AssignBalanced depends on.
// Declaring it here (rather than importing *fleet.Registry directly as a
// concrete type everywhere) keeps this package testable against a fake.
type Registry interface {
	Snapshot(maxIdle time.Duration) []fleet.WorkerSnapshot
	AssignByName(name, taskID string, sources []string, endTime time.Time) error
}

// AssignBalanced picks a worker via ChooseLeastLoaded and records the
// assignment. It returns an Unavailable error (NO_WORKERS_AVAILABLE) if no
// live worker exists.
func AssignBalanced(r Registry, taskID string, sources []string, endTime time.Time, maxIdle time.Duration) (string, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.AssignmentLatency)

	name, ok := ChooseLeastLoaded(r.Snapshot(maxIdle))
	if !ok {
		metrics.AssignmentsTotal.WithLabelValues("no_workers").Inc()
		return "", apierr.Unavailable("No collectors available")
	}

	if err := r.AssignByName(name, taskID, sources, endTime); err != nil {
		metrics.AssignmentsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("assign task %s to %s: %w", taskID, name, err)
	}
	metrics.AssignmentsTotal.WithLabelValues("ok").Inc()
	return name, nil
}
