package api

import (
	"context"

	"github.com/cuemby/fenwick/pkg/dispatcher"
	"github.com/cuemby/fenwick/pkg/rpc"
)

type clientServer struct {
	disp *dispatcher.Dispatcher
}

func (s *clientServer) Register(_ context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {
	if err := s.disp.Register(req.Username, req.Password); err != nil {
		return &rpc.RegisterResponse{Success: false, Message: err.Error()}, nil
	}
	return &rpc.RegisterResponse{Success: true, Message: "registered"}, nil
}

func (s *clientServer) Login(_ context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	token, err := s.disp.Login(req.Username, req.Password)
	if err != nil {
		return &rpc.LoginResponse{Success: false, Message: "Invalid username or password"}, nil
	}
	return &rpc.LoginResponse{Success: true, Message: "logged in", Token: token}, nil
}

func (s *clientServer) StartTask(_ context.Context, req *rpc.StartTaskRequest) (*rpc.StartTaskResponse, error) {
	taskID, message, success, err := s.disp.StartTask(
		req.Token, req.Keywords, req.Categories, req.Location, req.StartTime, req.EndTime,
	)
	if err != nil {
		return nil, err
	}
	return &rpc.StartTaskResponse{Success: success, Message: message, TaskID: taskID}, nil
}

func (s *clientServer) ListAvailableCategories(_ context.Context, _ *rpc.Empty) (*rpc.ListAvailableCategoriesResponse, error) {
	return &rpc.ListAvailableCategoriesResponse{Categories: s.disp.ListAvailableCategories()}, nil
}

func (s *clientServer) ListAvailableLocations(_ context.Context, _ *rpc.Empty) (*rpc.ListAvailableLocationsResponse, error) {
	return &rpc.ListAvailableLocationsResponse{Locations: s.disp.ListAvailableLocations()}, nil
}

// StreamResults subscribes to the Result Bus for req.TaskID, yielding
// envelopes until the task enters a terminal state, exactly as the
// component design specifies: drain under the bus's own bounded wait,
// then check Task Store status before looping again.
func (s *clientServer) StreamResults(req *rpc.StreamResultsRequest, stream rpc.ClientService_StreamResultsServer) error {
	if _, ok := s.disp.ResolveSession(req.Token); !ok {
		return nil
	}

	for {
		envelopes := s.disp.Results.Drain(req.TaskID)
		for _, e := range envelopes {
			if err := stream.Send(&rpc.ResultEnvelope{
				TaskID:    e.TaskID,
				Result:    e.Payload,
				Timestamp: e.Timestamp,
			}); err != nil {
				return err
			}
		}

		status, err := s.disp.TaskStatus(req.TaskID)
		if err != nil {
			return nil
		}
		if status.Terminal() {
			s.disp.Results.Discard(req.TaskID)
			return nil
		}

		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		default:
		}
	}
}
