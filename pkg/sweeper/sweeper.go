// Package sweeper is the Expiry Sweeper: a background loop that retires
// tasks whose end_time has passed. Directly grounded on the teacher's
// pkg/scheduler.Scheduler.run — identical ticker/select/stopCh shape and
// the same Start()/Stop() method pair.
package sweeper

import (
	"time"

	"github.com/cuemby/fenwick/pkg/log"
	"github.com/cuemby/fenwick/pkg/metrics"
	"github.com/cuemby/fenwick/pkg/types"
)

// TaskStore is the slice of taskstore.Store the sweeper depends on.
type TaskStore interface {
	ListPendingOrDispatched() ([]*types.Task, error)
	UpdateStatus(taskID string, status types.TaskStatus) error
}

// ResultSignaler wakes a task's Result Bus subscribers so they notice a
// terminal transition without waiting out their own poll timeout.
type ResultSignaler interface {
	Signal(taskID string)
}

// Sweeper runs the periodic expiry cycle.
type Sweeper struct {
	store    TaskStore
	bus      ResultSignaler
	interval time.Duration
	stopCh   chan struct{}
}

// New constructs a Sweeper that runs every interval (default 5s if <= 0).
func New(store TaskStore, bus ResultSignaler, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Sweeper{
		store:    store,
		bus:      bus,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the sweeper loop in its own goroutine.
func (s *Sweeper) Start() {
	go s.run()
}

// Stop signals the loop to exit. Safe to call once.
func (s *Sweeper) Stop() {
	close(s.stopCh)
}

func (s *Sweeper) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	logger := log.WithComponent("sweeper")
	metrics.SweeperCyclesTotal.Inc()

	tasks, err := s.store.ListPendingOrDispatched()
	if err != nil {
		logger.Error().Err(err).Msg("failed to list pending/dispatched tasks")
		return
	}

	now := time.Now().UTC()
	for _, task := range tasks {
		if task.EndTime.After(now) {
			continue
		}
		if err := s.store.UpdateStatus(task.ID, types.TaskCompleted); err != nil {
			logger.Error().Err(err).Str("task_id", task.ID).Msg("failed to complete expired task")
			continue
		}
		metrics.SweeperExpiredTotal.Inc()
		s.bus.Signal(task.ID)
	}
}
