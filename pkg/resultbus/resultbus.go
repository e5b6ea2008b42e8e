// Package resultbus delivers per-task result envelopes to streaming
// subscribers. Each task_id gets its own mutex+sync.Cond-guarded FIFO,
// created lazily on first reference. Producers (collector workers) Push;
// consumers (StreamResults handlers) Drain in a loop, waiting up to one
// second per iteration so they re-check task-terminal state even without a
// new push.
//
// Each envelope is returned by exactly one Drain call: a task has a single
// shared queue, so when several subscribers drain the same task_id they
// split the envelopes between them instead of each receiving every one.
//
// This is grounded on the teacher's pkg/events.Broker for the bounded,
// drop-oldest-under-backpressure policy, but uses a condition variable
// instead of a channel: Drain's bounded wait is better expressed directly
// by sync.Cond than by adding a timer goroutine around a channel receive.
package resultbus

import (
	"sync"
	"time"

	"github.com/cuemby/fenwick/pkg/log"
	"github.com/cuemby/fenwick/pkg/metrics"
	"github.com/cuemby/fenwick/pkg/types"
)

const drainWait = time.Second

// Bus owns one queue per task_id.
type Bus struct {
	mu        sync.Mutex
	queues    map[string]*taskQueue
	highWater int
}

type taskQueue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []types.ResultEnvelope
}

// New constructs a Bus. highWater bounds each task's queue depth; a push
// past the bound drops the oldest queued envelope and increments
// resultbus_drops_total.
func New(highWater int) *Bus {
	if highWater <= 0 {
		highWater = 1000
	}
	return &Bus{
		queues:    make(map[string]*taskQueue),
		highWater: highWater,
	}
}

func (b *Bus) queueFor(taskID string) *taskQueue {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[taskID]
	if !ok {
		q = &taskQueue{}
		q.cond = sync.NewCond(&q.mu)
		b.queues[taskID] = q
	}
	return q
}

// Push appends an envelope to task_id's queue and wakes any waiting
// drainers. If the queue is already at the high-water mark, the oldest
// entry is dropped first.
func (b *Bus) Push(taskID string, envelope types.ResultEnvelope) {
	q := b.queueFor(taskID)

	q.mu.Lock()
	if len(q.items) >= b.highWater {
		q.items = q.items[1:]
		metrics.ResultBusDropsTotal.Inc()
		log.WithTaskID(taskID).Warn().Msg("result bus high-water mark exceeded, dropping oldest envelope")
	}
	q.items = append(q.items, envelope)
	metrics.ResultBusDepth.WithLabelValues(taskID).Set(float64(len(q.items)))
	q.cond.Signal()
	q.mu.Unlock()
}

// Drain blocks for up to one second waiting for new envelopes, then
// returns whatever is queued (possibly empty). Callers loop, checking
// Task Store status for terminal state between calls, exactly as the
// component design specifies.
func (b *Bus) Drain(taskID string) []types.ResultEnvelope {
	q := b.queueFor(taskID)

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		timer := time.AfterFunc(drainWait, func() {
			q.mu.Lock()
			q.cond.Broadcast()
			q.mu.Unlock()
		})
		q.cond.Wait()
		timer.Stop()
	}

	out := q.items
	q.items = nil
	metrics.ResultBusDepth.WithLabelValues(taskID).Set(0)
	return out
}

// Signal wakes every drainer blocked on task_id without pushing an
// envelope — used by the Expiry Sweeper so subscribers notice a task just
// went terminal instead of waiting out the full one-second timeout.
func (b *Bus) Signal(taskID string) {
	q := b.queueFor(taskID)
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Discard drops task_id's queue entirely. StreamResults calls it as soon as
// it sees the task in a terminal state, so queues do not accumulate
// indefinitely.
func (b *Bus) Discard(taskID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.queues, taskID)
	metrics.ResultBusDepth.DeleteLabelValues(taskID)
}
