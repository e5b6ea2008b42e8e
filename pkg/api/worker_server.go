package api

import (
	"context"
	"time"

	"github.com/cuemby/fenwick/pkg/dispatcher"
	"github.com/cuemby/fenwick/pkg/rpc"
)

type workerServer struct {
	disp         *dispatcher.Dispatcher
	pollInterval time.Duration
}

func (s *workerServer) RegisterCollector(_ context.Context, req *rpc.RegisterCollectorRequest) (*rpc.RegisterCollectorResponse, error) {
	if err := s.disp.RegisterCollector(req.Name, req.Secret); err != nil {
		return &rpc.RegisterCollectorResponse{Success: false, Message: err.Error()}, nil
	}
	return &rpc.RegisterCollectorResponse{Success: true, Message: "registered"}, nil
}

func (s *workerServer) LoginCollector(_ context.Context, req *rpc.LoginCollectorRequest) (*rpc.LoginCollectorResponse, error) {
	token, err := s.disp.LoginCollector(req.Name, req.Secret)
	if err != nil {
		return &rpc.LoginCollectorResponse{Success: false, Message: "Invalid credentials"}, nil
	}
	return &rpc.LoginCollectorResponse{Success: true, Message: "logged in", Token: token}, nil
}

func (s *workerServer) Heartbeat(_ context.Context, req *rpc.HeartbeatRequest) (*rpc.HeartbeatResponse, error) {
	if err := s.disp.Heartbeat(req.Token, req.Timestamp); err != nil {
		return &rpc.HeartbeatResponse{Success: false, Message: "Invalid token"}, nil
	}
	return &rpc.HeartbeatResponse{Success: true, Message: "ok"}, nil
}

func (s *workerServer) SubmitTaskResult(_ context.Context, req *rpc.SubmitTaskResultRequest) (*rpc.SubmitTaskResultResponse, error) {
	if err := s.disp.SubmitTaskResult(req.Token, req.TaskID, req.Timestamp, req.Result); err != nil {
		return &rpc.SubmitTaskResultResponse{Success: false, Message: "Invalid token"}, nil
	}
	return &rpc.SubmitTaskResultResponse{Success: true, Message: "recorded"}, nil
}

// StreamTasks polls the worker's assignment table every pollInterval,
// yielding each task_id not previously sent on this stream lifetime,
// exactly as the worker-facing service's component design specifies. Each
// iteration also drives purge_expired/failover_dead so dead-worker
// reassignment happens on the same cadence as assignment delivery.
func (s *workerServer) StreamTasks(req *rpc.StreamTasksRequest, stream rpc.WorkerService_StreamTasksServer) error {
	sent := make(map[string]bool)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	poll := func() (bool, error) {
		s.disp.RunFailoverCycle()

		assigned, err := s.disp.AssignedTasksFor(req.Token)
		if err != nil {
			return false, nil // worker removed from registry: stream ends cleanly
		}

		for taskID, a := range assigned {
			if sent[taskID] {
				continue
			}
			task, err := s.disp.Tasks.Get(taskID)
			if err != nil {
				continue
			}
			assignment := &rpc.TaskAssignment{
				TaskID:    taskID,
				Keywords:  task.Keywords,
				Category:  first(task.Categories),
				Location:  first(task.Locations),
				StartTime: task.StartTime,
				EndTime:   task.EndTime,
				Sources:   a.Sources,
			}
			if err := stream.Send(assignment); err != nil {
				return false, err
			}
			sent[taskID] = true
		}
		return true, nil
	}

	if cont, err := poll(); err != nil {
		return err
	} else if !cont {
		return nil
	}

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case <-ticker.C:
			cont, err := poll()
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
	}
}

func first(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}
