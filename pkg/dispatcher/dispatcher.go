// Package dispatcher wires the Source Catalog, User Store, Task Store,
// Fleet Registry, Assignment Engine, Result Bus, and Expiry Sweeper into
// the Dispatcher core's high-level operations. It replaces the role the
// teacher's pkg/manager.Manager plays for Warren's raft cluster: a single
// process-wide object constructed once at startup and torn down at
// shutdown, with no lazy globals, matching the "Global state" design note.
package dispatcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cuemby/fenwick/pkg/apierr"
	"github.com/cuemby/fenwick/pkg/assign"
	"github.com/cuemby/fenwick/pkg/authsession"
	"github.com/cuemby/fenwick/pkg/catalog"
	"github.com/cuemby/fenwick/pkg/events"
	"github.com/cuemby/fenwick/pkg/fleet"
	"github.com/cuemby/fenwick/pkg/log"
	"github.com/cuemby/fenwick/pkg/metrics"
	"github.com/cuemby/fenwick/pkg/resultbus"
	"github.com/cuemby/fenwick/pkg/sweeper"
	"github.com/cuemby/fenwick/pkg/taskstore"
	"github.com/cuemby/fenwick/pkg/types"
	"github.com/cuemby/fenwick/pkg/userstore"
)

// Dispatcher is the process-wide core. All of its fields are constructed
// once in New and torn down once in Close; nothing here is a package-level
// global.
type Dispatcher struct {
	Tasks    taskstore.Store
	Users    *userstore.Store
	Fleet    *fleet.Registry
	Catalog  *catalog.Catalog
	Results  *resultbus.Bus
	Sessions *authsession.Store
	Events   *events.Broker
	Sweeper  *sweeper.Sweeper
	Metrics  *metrics.Collector

	heartbeatTimeout time.Duration
}

// Deps bundles the constructed subsystems New wires together. Each is
// built by cmd/fenwick from config.Config before calling New.
type Deps struct {
	Tasks            taskstore.Store
	Users            *userstore.Store
	Catalog          *catalog.Catalog
	ResultQueueHighWater int
	HeartbeatTimeout time.Duration
	SweeperInterval  time.Duration
}

// New constructs a Dispatcher and starts its Expiry Sweeper and event
// broker. Call Close to stop both at shutdown.
func New(d Deps) *Dispatcher {
	broker := events.NewBroker()
	broker.Start()

	reg := fleet.NewRegistry(broker)
	bus := resultbus.New(d.ResultQueueHighWater)

	disp := &Dispatcher{
		Tasks:            d.Tasks,
		Users:            d.Users,
		Fleet:            reg,
		Catalog:          d.Catalog,
		Results:          bus,
		Sessions:         authsession.New(),
		Events:           broker,
		heartbeatTimeout: d.HeartbeatTimeout,
	}

	disp.Sweeper = sweeper.New(disp.Tasks, bus, d.SweeperInterval)
	disp.Sweeper.Start()

	disp.Metrics = metrics.NewCollector(disp.Tasks, reg, d.HeartbeatTimeout)
	disp.Metrics.Start()

	return disp
}

// Close stops the sweeper, metrics collector, and event broker. It does
// not close Tasks or Users — those own their own lifetimes via their
// Close methods, called separately by cmd/fenwick once the RPC listeners
// have stopped.
func (d *Dispatcher) Close() {
	d.Sweeper.Stop()
	d.Metrics.Stop()
	d.Events.Stop()
}

// Register creates a new client account.
func (d *Dispatcher) Register(username, password string) error {
	if username == "" || password == "" {
		return apierr.InvalidArgument("username and password are required")
	}
	return d.Users.Register(username, password)
}

// Login authenticates a client and, on success, installs a fresh session
// token mapping to username.
func (d *Dispatcher) Login(username, password string) (string, error) {
	ok, err := d.Users.Authenticate(username, password)
	if err != nil {
		return "", fmt.Errorf("authenticate: %w", err)
	}
	if !ok {
		return "", apierr.AuthError("invalid username or password")
	}
	return d.Sessions.Issue(username)
}

// ListAvailableCategories reloads the catalog and returns its categories.
func (d *Dispatcher) ListAvailableCategories() []string {
	d.Catalog.Reload()
	return d.Catalog.ListCategories()
}

// ListAvailableLocations reloads the catalog and returns its locations.
func (d *Dispatcher) ListAvailableLocations() []string {
	d.Catalog.Reload()
	return d.Catalog.ListLocations()
}

// StartTask authenticates token, creates the task record, matches sources
// via the catalog, and assigns each matched source independently via the
// Assignment Engine. If at least one assignment succeeds the task is
// marked DISPATCHED; otherwise — including the zero-sources-matched case —
// it is marked FAILED. Per this repo's Open Question resolution, a FAILED
// row is always persisted (never silently skipped), but the RPC still
// returns success=false with an empty task_id.
func (d *Dispatcher) StartTask(token, keywords, categoriesCSV, locationCSV string, start, end time.Time) (taskID, message string, success bool, err error) {
	username, ok := d.Sessions.Lookup(token)
	if !ok {
		return "", "Invalid token", false, nil
	}
	logger := log.WithUser(username)

	if start.After(end) {
		return "", "", false, apierr.InvalidArgument("start_time must not be after end_time")
	}

	categories := splitCSV(categoriesCSV)
	locations := splitCSV(locationCSV)

	id := uuid.New().String()
	now := time.Now().UTC()
	task := &types.Task{
		ID:         id,
		OwnerToken: token,
		Keywords:   keywords,
		Categories: categories,
		Locations:  locations,
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		Status:     types.TaskPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := d.Tasks.Create(task); err != nil {
		return "", "", false, fmt.Errorf("create task: %w", err)
	}
	metrics.TasksCreatedTotal.Inc()

	sources := d.Catalog.Match(categories, locations)
	placed := 0
	for _, src := range sources {
		if _, assignErr := assign.AssignBalanced(d.Fleet, id, []string{src.ID}, task.EndTime, d.heartbeatTimeout); assignErr != nil {
			logger.Warn().Err(assignErr).Str("source", src.ID).Str("task_id", id).Msg("failed to place source")
			continue
		}
		placed++
	}

	if placed == 0 {
		if err := d.Tasks.UpdateStatus(id, types.TaskFailed); err != nil {
			logger.Warn().Err(err).Str("task_id", id).Msg("failed to mark task FAILED")
		}
		metrics.TasksFailedTotal.Inc()
		d.publishTask(events.EventTaskFailed, id, "no collectors available for any matched source")

		msg := "No collectors available"
		if len(sources) == 0 {
			msg = "No matching sources"
		}
		return "", msg, false, nil
	}

	if err := d.Tasks.UpdateStatus(id, types.TaskDispatched); err != nil {
		logger.Warn().Err(err).Str("task_id", id).Msg("failed to mark task DISPATCHED")
	}
	d.publishTask(events.EventTaskDispatched, id, fmt.Sprintf("placed %d/%d sources", placed, len(sources)))

	return id, fmt.Sprintf("placed %d of %d sources", placed, len(sources)), true, nil
}

// TaskStatus returns the current status of a task, used by StreamResults
// to decide when to stop draining.
func (d *Dispatcher) TaskStatus(taskID string) (types.TaskStatus, error) {
	task, err := d.Tasks.Get(taskID)
	if err != nil {
		return "", err
	}
	return task.Status, nil
}

// ResolveSession maps a client token to its username.
func (d *Dispatcher) ResolveSession(token string) (string, bool) {
	return d.Sessions.Lookup(token)
}

// RegisterCollector registers a new worker identity.
func (d *Dispatcher) RegisterCollector(name, secret string) error {
	if name == "" || secret == "" {
		return apierr.InvalidArgument("name and secret are required")
	}
	return d.Fleet.Register(name, secret)
}

// LoginCollector authenticates a worker and issues a fresh fleet token.
func (d *Dispatcher) LoginCollector(name, secret string) (string, error) {
	return d.Fleet.Login(name, secret)
}

// Heartbeat records liveness for the worker owning token.
func (d *Dispatcher) Heartbeat(token string, ts time.Time) error {
	return d.Fleet.Heartbeat(token, ts)
}

// SubmitTaskResult records the result in the Fleet Registry and pushes the
// envelope onto the Result Bus.
func (d *Dispatcher) SubmitTaskResult(token, taskID string, ts time.Time, payload []byte) error {
	if err := d.Fleet.RecordResult(token, ts); err != nil {
		return err
	}
	d.Results.Push(taskID, types.ResultEnvelope{
		TaskID:    taskID,
		Source:    "",
		Payload:   payload,
		Timestamp: ts,
	})
	return nil
}

// RunFailoverCycle calls PurgeExpired then FailoverDead against the Fleet
// Registry, reassigning outstanding work from dead workers via the
// Assignment Engine. It is invoked from each StreamTasks poll iteration,
// per the worker-facing service's component design.
func (d *Dispatcher) RunFailoverCycle() {
	d.Fleet.PurgeExpired()
	d.Fleet.FailoverDead(d.heartbeatTimeout, func(taskID string, sources []string, endTime time.Time) (string, error) {
		return assign.AssignBalanced(d.Fleet, taskID, sources, endTime, d.heartbeatTimeout)
	})
}

// AssignedTasksFor returns the authenticated worker's current assignment
// table.
func (d *Dispatcher) AssignedTasksFor(token string) (map[string]types.TaskSourceAssignment, error) {
	return d.Fleet.AssignedTasksFor(token)
}

func (d *Dispatcher) publishTask(t events.EventType, taskID, msg string) {
	d.Events.Publish(&events.Event{
		Type:     t,
		Message:  msg,
		Metadata: map[string]string{"task_id": taskID},
	})
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
