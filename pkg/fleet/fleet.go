// Package fleet is the worker fleet registry: an in-memory, mutex-
// protected table of collector identities, their session tokens, their
// last heartbeat, and their outstanding per-task assignments. It is the
// Dispatcher's single source of truth for which workers exist and what
// they are doing, grounded on the teacher's single-mutex in-memory idiom
// (pkg/worker's containersMu sync.RWMutex guarding worker.containers).
package fleet

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/fenwick/pkg/apierr"
	"github.com/cuemby/fenwick/pkg/events"
	"github.com/cuemby/fenwick/pkg/log"
	"github.com/cuemby/fenwick/pkg/metrics"
	"github.com/cuemby/fenwick/pkg/types"
)

// WorkerSnapshot is a read-only, lock-free copy of one worker's state, used
// by the Assignment Engine to pick a target without holding the registry
// mutex across its decision.
type WorkerSnapshot struct {
	Name          string
	AssignedCount int
	LastHeartbeat time.Time
}

// PurgedAssignment describes one assignment removed by PurgeExpired.
type PurgedAssignment struct {
	Worker string
	TaskID string
}

// FailoverResult describes one reassignment performed by FailoverDead.
type FailoverResult struct {
	DeadWorker string
	TaskID     string
	NewWorker  string
	Err        error
}

// Registry is the Fleet Registry. Every exported method except
// FailoverDead takes the single mutex for its full body; FailoverDead
// holds it only while removing dead workers and releases it before calling
// reassign. No method yields to the network or blocks indefinitely while
// holding it.
type Registry struct {
	mu      sync.Mutex
	workers map[string]*types.CollectorInfo
	tokens  map[string]string // token -> worker name

	broker *events.Broker
}

// NewRegistry constructs an empty registry. broker may be nil if the
// caller does not want operational events published.
func NewRegistry(broker *events.Broker) *Registry {
	return &Registry{
		workers: make(map[string]*types.CollectorInfo),
		tokens:  make(map[string]string),
		broker:  broker,
	}
}

// Register inserts a new worker identity, failing with Conflict if the
// name is already taken.
func (r *Registry) Register(name, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workers[name]; exists {
		return apierr.Conflict(fmt.Sprintf("collector already registered: %s", name))
	}
	r.workers[name] = &types.CollectorInfo{
		Name:          name,
		SharedSecret:  secret,
		AssignedTasks: make(map[string]*types.TaskSourceAssignment),
	}
	metrics.FleetSize.Set(float64(len(r.workers)))
	r.publish(events.EventWorkerRegistered, name, "collector registered")
	return nil
}

// Login validates the shared secret, mints a fresh token, records the
// initial heartbeat, and replaces any prior token for this worker.
func (r *Registry) Login(name, secret string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workers[name]
	if !ok || w.SharedSecret != secret {
		return "", apierr.AuthError("invalid collector credentials")
	}

	if w.CurrentToken != "" {
		delete(r.tokens, w.CurrentToken)
	}

	token, err := randomToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	w.CurrentToken = token
	w.LastHeartbeat = time.Now().UTC()
	r.tokens[token] = name

	r.publish(events.EventWorkerLoggedIn, name, "collector logged in")
	return token, nil
}

// Heartbeat updates last_heartbeat and the heartbeat counter for the
// worker owning token.
func (r *Registry) Heartbeat(token string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.byToken(token)
	if err != nil {
		return err
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	w.LastHeartbeat = ts
	w.HeartbeatCount++
	return nil
}

// Assign appends sources to the worker's assignment entry for taskID,
// merging without duplicates, and bumps the assigned counter only on the
// first appearance of taskID for this worker.
func (r *Registry) Assign(token, taskID string, sources []string, endTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.byToken(token)
	if err != nil {
		return err
	}

	entry, exists := w.AssignedTasks[taskID]
	if !exists {
		entry = &types.TaskSourceAssignment{EndTime: endTime}
		w.AssignedTasks[taskID] = entry
		w.AssignedCount++
	}
	entry.EndTime = endTime
	entry.Sources = mergeUnique(entry.Sources, sources)
	return nil
}

// AssignByName is Assign addressed by worker name rather than session
// token, used internally by failover where there is no live session.
func (r *Registry) AssignByName(name, taskID string, sources []string, endTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workers[name]
	if !ok {
		return apierr.NotFound(fmt.Sprintf("collector not found: %s", name))
	}
	entry, exists := w.AssignedTasks[taskID]
	if !exists {
		entry = &types.TaskSourceAssignment{EndTime: endTime}
		w.AssignedTasks[taskID] = entry
		w.AssignedCount++
	}
	entry.EndTime = endTime
	entry.Sources = mergeUnique(entry.Sources, sources)
	return nil
}

// RecordResult increments the completed counter and updates
// last_result_time for the worker owning token.
func (r *Registry) RecordResult(token string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.byToken(token)
	if err != nil {
		return err
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	w.CompletedCount++
	w.LastResultTime = ts
	return nil
}

// PurgeExpired removes assignments whose end_time has passed for every
// worker, returning what was removed.
func (r *Registry) PurgeExpired() []PurgedAssignment {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	var removed []PurgedAssignment
	for name, w := range r.workers {
		for taskID, assignment := range w.AssignedTasks {
			if !assignment.EndTime.After(now) {
				delete(w.AssignedTasks, taskID)
				removed = append(removed, PurgedAssignment{Worker: name, TaskID: taskID})
			}
		}
	}
	return removed
}

// Size returns the total number of registered workers, live or stale.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workers)
}

// Snapshot returns a lock-free copy of every worker whose last heartbeat
// is within maxIdle of now — the view the Assignment Engine selects over.
func (r *Registry) Snapshot(maxIdle time.Duration) []WorkerSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	out := make([]WorkerSnapshot, 0, len(r.workers))
	for _, w := range r.workers {
		if w.LastHeartbeat.IsZero() || now.Sub(w.LastHeartbeat) > maxIdle {
			continue
		}
		out = append(out, WorkerSnapshot{
			Name:          w.Name,
			AssignedCount: len(w.AssignedTasks),
			LastHeartbeat: w.LastHeartbeat,
		})
	}
	return out
}

// AssignedTasksFor returns a lock-free copy of a worker's current
// assignment table, keyed by task_id, for use by StreamTasks.
func (r *Registry) AssignedTasksFor(token string) (map[string]types.TaskSourceAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.byToken(token)
	if err != nil {
		return nil, err
	}
	out := make(map[string]types.TaskSourceAssignment, len(w.AssignedTasks))
	for taskID, a := range w.AssignedTasks {
		out[taskID] = types.TaskSourceAssignment{
			Sources: append([]string(nil), a.Sources...),
			EndTime: a.EndTime,
		}
	}
	return out, nil
}

// FailoverDead identifies workers whose last heartbeat is older than
// 2*heartbeatTimeout, removes them from the registry and token index, and
// invokes reassign for each of their outstanding task assignments.
// reassign is supplied by the caller (the dispatcher, via pkg/assign) so
// this package never imports the Assignment Engine and stays a pure
// registry.
func (r *Registry) FailoverDead(heartbeatTimeout time.Duration, reassign func(taskID string, sources []string, endTime time.Time) (string, error)) []FailoverResult {
	deadline := 2 * heartbeatTimeout
	now := time.Now().UTC()

	r.mu.Lock()
	var dead []*types.CollectorInfo
	for name, w := range r.workers {
		if w.LastHeartbeat.IsZero() || now.Sub(w.LastHeartbeat) <= deadline {
			continue
		}
		dead = append(dead, w)
		delete(r.workers, name)
		if w.CurrentToken != "" {
			delete(r.tokens, w.CurrentToken)
		}
	}
	metrics.FleetSize.Set(float64(len(r.workers)))
	r.mu.Unlock()

	var results []FailoverResult
	for _, w := range dead {
		r.publish(events.EventWorkerFailedOver, w.Name, "collector failed over")
		for taskID, assignment := range w.AssignedTasks {
			newWorker, err := reassign(taskID, assignment.Sources, assignment.EndTime)
			results = append(results, FailoverResult{DeadWorker: w.Name, TaskID: taskID, NewWorker: newWorker, Err: err})
			if err != nil {
				log.WithComponent("fleet").Warn().Err(err).Str("task_id", taskID).Msg("failover reassignment failed")
				continue
			}
			metrics.FailoversTotal.Inc()
		}
	}
	return results
}

func (r *Registry) byToken(token string) (*types.CollectorInfo, error) {
	name, ok := r.tokens[token]
	if !ok {
		return nil, apierr.AuthError("invalid token")
	}
	w, ok := r.workers[name]
	if !ok {
		return nil, apierr.AuthError("invalid token")
	}
	return w, nil
}

func (r *Registry) publish(t events.EventType, worker, msg string) {
	if r.broker == nil {
		return
	}
	r.broker.Publish(&events.Event{
		Type:     t,
		Message:  msg,
		Metadata: map[string]string{"worker": worker},
	})
}

func mergeUnique(existing, add []string) []string {
	seen := make(map[string]struct{}, len(existing))
	out := append([]string(nil), existing...)
	for _, s := range existing {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func randomToken() (string, error) {
	b := make([]byte, 16) // 128 bits
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
