/*
Package types defines the core data structures shared across Fenwick's
dispatcher core.

# Architecture

The types package is the foundation of the dispatcher's data model. It
defines:

  - Accounts (User)
  - Search tasks and their lifecycle (Task, TaskStatus)
  - Catalog entries (Source)
  - Fleet membership (CollectorInfo, TaskSourceAssignment)
  - Streamed payloads (ResultEnvelope, TaskAssignment)

# Core Types

Task lifecycle:

	PENDING → DISPATCHED → COMPLETED
	   ↓
	FAILED

CANCELLED is reachable from any non-terminal state. TaskStatus.CanTransitionTo
encodes the DAG; callers should not attempt a direct assignment without
consulting it.

# Thread Safety

Types in this package carry no locks of their own. CollectorInfo is owned
exclusively by pkg/fleet, which serializes all access behind a single
mutex; Task is owned by pkg/taskstore, which serializes status
transitions per task_id via UpdateStatus.

# See Also

  - pkg/taskstore for Task persistence
  - pkg/userstore for User persistence
  - pkg/fleet for CollectorInfo lifecycle
  - pkg/catalog for Source loading and matching
*/
package types
