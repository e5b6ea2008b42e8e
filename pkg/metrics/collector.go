package metrics

import (
	"time"

	"github.com/cuemby/fenwick/pkg/fleet"
	"github.com/cuemby/fenwick/pkg/taskstore"
	"github.com/cuemby/fenwick/pkg/types"
)

// Collector periodically scrapes task-store and fleet state into the
// exported gauges, the way the teacher's MetricsCollector polls the
// manager on a fixed tick rather than updating gauges inline on every
// mutation.
type Collector struct {
	tasks            taskstore.Store
	fleet            *fleet.Registry
	heartbeatTimeout time.Duration
	interval         time.Duration
	stopCh           chan struct{}
}

// NewCollector constructs a Collector. heartbeatTimeout is the same
// value the dispatcher uses to decide which workers count as live.
func NewCollector(tasks taskstore.Store, reg *fleet.Registry, heartbeatTimeout time.Duration) *Collector {
	return &Collector{
		tasks:            tasks,
		fleet:            reg,
		heartbeatTimeout: heartbeatTimeout,
		interval:         15 * time.Second,
		stopCh:           make(chan struct{}),
	}
}

// Start begins the collection ticker in the background.
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts the collection ticker.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectTaskCounts()
	c.collectFleetCounts()
}

func (c *Collector) collectTaskCounts() {
	for _, status := range []types.TaskStatus{
		types.TaskPending, types.TaskDispatched,
		types.TaskCompleted, types.TaskFailed, types.TaskCancelled,
	} {
		n, err := c.tasks.Count([]types.TaskStatus{status})
		if err != nil {
			continue
		}
		TasksTotal.WithLabelValues(string(status)).Set(float64(n))
	}
}

func (c *Collector) collectFleetCounts() {
	FleetSize.Set(float64(c.fleet.Size()))
	FleetLiveWorkers.Set(float64(len(c.fleet.Snapshot(c.heartbeatTimeout))))
}
