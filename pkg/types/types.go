package types

import (
	"strings"
	"time"
)

// User is a registered client account. Created by the User Store's
// Register and never mutated or deleted by the dispatcher core.
type User struct {
	Username     string
	PasswordHash string // hex-encoded PBKDF2-HMAC-SHA-256 digest
	Salt         string // hex-encoded random salt
	CreatedAt    time.Time
}

// TaskStatus is the lifecycle state of a Task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskDispatched TaskStatus = "DISPATCHED"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskFailed     TaskStatus = "FAILED"
	TaskCancelled  TaskStatus = "CANCELLED"
)

// CanTransitionTo reports whether the task lifecycle DAG permits moving
// from this status to next: PENDING -> DISPATCHED -> COMPLETED, FAILED
// reachable only from PENDING, CANCELLED reachable from any non-terminal
// state.
func (ts TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if next == TaskCancelled {
		return ts == TaskPending || ts == TaskDispatched
	}
	switch ts {
	case TaskPending:
		return next == TaskDispatched || next == TaskFailed || next == TaskCompleted
	case TaskDispatched:
		return next == TaskCompleted
	default:
		return false
	}
}

// Terminal reports whether the status admits no further transitions.
func (ts TaskStatus) Terminal() bool {
	switch ts {
	case TaskCompleted, TaskFailed, TaskCancelled:
		return true
	default:
		return false
	}
}

// Task is a client-originated OSINT search request, decomposed into
// per-source assignments handed to the collector fleet.
type Task struct {
	ID         string
	OwnerToken string
	Keywords   string
	Categories []string
	Locations  []string
	StartTime  time.Time
	EndTime    time.Time
	Status     TaskStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Source is an immutable feed descriptor loaded from the source catalog.
type Source struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URL        string   `json:"url"`
	Categories []string `json:"categories"`
	Locations  []string `json:"locations"`
}

// NormalizeTags lowercases, trims, and splits comma-separated catalog
// tag fields into a flat slice — each catalog field is itself a
// comma-separated list, so callers must tokenize before deduplicating.
func NormalizeTags(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// TaskSourceAssignment is one worker's outstanding responsibility for a
// task: the ordered set of sources it must poll and when that
// responsibility expires.
type TaskSourceAssignment struct {
	Sources []string
	EndTime time.Time
}

// CollectorInfo is a registered worker in the Fleet Registry.
type CollectorInfo struct {
	Name           string
	SharedSecret   string
	CurrentToken   string
	LastHeartbeat  time.Time
	AssignedTasks  map[string]*TaskSourceAssignment
	AssignedCount  uint64
	CompletedCount uint64
	HeartbeatCount uint64
	LastResultTime time.Time
}

// ResultEnvelope is an opaque result payload delivered from a collector,
// through the dispatcher, to subscribed clients. The dispatcher never
// parses Payload.
type ResultEnvelope struct {
	TaskID    string
	Source    string
	Payload   []byte
	Timestamp time.Time
}

// TaskAssignment is what a worker receives over StreamTasks: everything
// it needs to start pulling a task's sources.
type TaskAssignment struct {
	TaskID    string
	Keywords  string
	Category  string
	Location  string
	StartTime time.Time
	EndTime   time.Time
	Sources   []string
}
