// Package taskstore persists Task records: the dispatcher's single source
// of truth for a search task's lifecycle state.
package taskstore

import "github.com/cuemby/fenwick/pkg/types"

// Filter narrows a List call. A zero-value field is not applied: an empty
// Token matches every token, a nil Statuses matches every status.
type Filter struct {
	Token        string
	Statuses     []types.TaskStatus
	StartAfter   *int64 // unix seconds, inclusive
	StartBefore  *int64 // unix seconds, inclusive
	Limit        int
	Offset       int
}

// Store is the persistence interface the dispatcher core depends on. The
// BoltDB-backed implementation is the only one in this repo, but handlers
// depend on this interface so tests can substitute an in-memory fake.
type Store interface {
	Create(task *types.Task) error
	UpdateStatus(taskID string, status types.TaskStatus) error
	Get(taskID string) (*types.Task, error)
	List(filter Filter) ([]*types.Task, error)
	Count(statuses []types.TaskStatus) (int, error)
	ListPendingOrDispatched() ([]*types.Task, error)
	Close() error
}
