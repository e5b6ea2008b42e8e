package taskstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/fenwick/pkg/apierr"
	"github.com/cuemby/fenwick/pkg/types"
)

var bucketTasks = []byte("tasks")

// BoltStore implements Store using go.etcd.io/bbolt, matching the
// teacher's storage idiom: one bucket, JSON-marshaled values, CRUD wrapped
// in db.Update/db.View transactions. BoltDB carries no secondary indexes,
// so List filters and sorts in Go over a full bucket scan, exactly as the
// teacher's ForEach-based listing does.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if absent) the bolt file at path and
// ensures the tasks bucket exists.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTasks)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create tasks bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Create(task *types.Task) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		data, err := json.Marshal(task)
		if err != nil {
			return err
		}
		return b.Put([]byte(task.ID), data)
	})
}

// UpdateStatus enforces the lifecycle DAG and bumps updated_at. Callers
// must go through this method rather than mutating a fetched *Task
// directly and re-Create-ing it: this is the one chokepoint that
// serializes status transitions per task_id, per the concurrency model.
func (s *BoltStore) UpdateStatus(taskID string, status types.TaskStatus) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		data := b.Get([]byte(taskID))
		if data == nil {
			return apierr.NotFound(fmt.Sprintf("task not found: %s", taskID))
		}
		var task types.Task
		if err := json.Unmarshal(data, &task); err != nil {
			return err
		}
		if !task.Status.CanTransitionTo(status) {
			return apierr.InvalidArgument(fmt.Sprintf("cannot transition task %s from %s to %s", taskID, task.Status, status))
		}
		task.Status = status
		task.UpdatedAt = time.Now().UTC()
		out, err := json.Marshal(&task)
		if err != nil {
			return err
		}
		return b.Put([]byte(taskID), out)
	})
}

func (s *BoltStore) Get(taskID string) (*types.Task, error) {
	var task types.Task
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		data := b.Get([]byte(taskID))
		if data == nil {
			return apierr.NotFound(fmt.Sprintf("task not found: %s", taskID))
		}
		return json.Unmarshal(data, &task)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *BoltStore) all() ([]*types.Task, error) {
	var tasks []*types.Task
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		return b.ForEach(func(_, v []byte) error {
			var task types.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return err
			}
			tasks = append(tasks, &task)
			return nil
		})
	})
	return tasks, err
}

func (s *BoltStore) List(filter Filter) ([]*types.Task, error) {
	tasks, err := s.all()
	if err != nil {
		return nil, err
	}

	statusSet := make(map[types.TaskStatus]struct{}, len(filter.Statuses))
	for _, st := range filter.Statuses {
		statusSet[st] = struct{}{}
	}

	var out []*types.Task
	for _, t := range tasks {
		if filter.Token != "" && t.OwnerToken != filter.Token {
			continue
		}
		if len(statusSet) > 0 {
			if _, ok := statusSet[t.Status]; !ok {
				continue
			}
		}
		if filter.StartAfter != nil && t.StartTime.Unix() < *filter.StartAfter {
			continue
		}
		if filter.StartBefore != nil && t.StartTime.Unix() > *filter.StartBefore {
			continue
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *BoltStore) Count(statuses []types.TaskStatus) (int, error) {
	tasks, err := s.all()
	if err != nil {
		return 0, err
	}
	if len(statuses) == 0 {
		return len(tasks), nil
	}
	set := make(map[types.TaskStatus]struct{}, len(statuses))
	for _, st := range statuses {
		set[st] = struct{}{}
	}
	count := 0
	for _, t := range tasks {
		if _, ok := set[t.Status]; ok {
			count++
		}
	}
	return count, nil
}

func (s *BoltStore) ListPendingOrDispatched() ([]*types.Task, error) {
	return s.List(Filter{Statuses: []types.TaskStatus{types.TaskPending, types.TaskDispatched}})
}
