// Package api implements the dispatcher's two gRPC services
// (rpc.ClientServiceServer, rpc.WorkerServiceServer) against the
// dispatcher core. Grounded on the teacher's pkg/api/server.go for the
// overall server shape (NewServer/Start/Stop around a grpc.Server), minus
// the mTLS and raft-leader-check machinery this domain has no use for.
package api

import (
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/cuemby/fenwick/pkg/dispatcher"
	"github.com/cuemby/fenwick/pkg/log"
	"github.com/cuemby/fenwick/pkg/rpc"
)

// Server hosts both gRPC services, each on its own listener/port as the
// external interfaces define (client_port, collector_port).
type Server struct {
	disp *dispatcher.Dispatcher

	clientGRPC   *grpc.Server
	workerGRPC   *grpc.Server
	streamPoll   time.Duration
}

// NewServer constructs a Server bound to disp.
func NewServer(disp *dispatcher.Dispatcher, streamPollInterval time.Duration) *Server {
	if streamPollInterval <= 0 {
		streamPollInterval = 5 * time.Second
	}
	return &Server{disp: disp, streamPoll: streamPollInterval}
}

// Start binds and serves both services. It returns once both listeners
// are bound; serving continues in background goroutines until Stop.
func (s *Server) Start(clientAddr, workerAddr string) error {
	clientLis, err := net.Listen("tcp", clientAddr)
	if err != nil {
		return fmt.Errorf("listen client service on %s: %w", clientAddr, err)
	}
	workerLis, err := net.Listen("tcp", workerAddr)
	if err != nil {
		clientLis.Close()
		return fmt.Errorf("listen worker service on %s: %w", workerAddr, err)
	}

	s.clientGRPC = grpc.NewServer(
		grpc.UnaryInterceptor(RecoveringInterceptor()),
		grpc.StreamInterceptor(StreamRecoveringInterceptor()),
	)
	rpc.RegisterClientServiceServer(s.clientGRPC, &clientServer{disp: s.disp})

	s.workerGRPC = grpc.NewServer(
		grpc.UnaryInterceptor(RecoveringInterceptor()),
		grpc.StreamInterceptor(StreamRecoveringInterceptor()),
	)
	rpc.RegisterWorkerServiceServer(s.workerGRPC, &workerServer{disp: s.disp, pollInterval: s.streamPoll})

	logger := log.WithComponent("api")
	go func() {
		logger.Info().Msg(fmt.Sprintf("client service listening on %s", clientAddr))
		if err := s.clientGRPC.Serve(clientLis); err != nil {
			logger.Warn().Err(err).Msg("client service stopped")
		}
	}()
	go func() {
		logger.Info().Msg(fmt.Sprintf("worker service listening on %s", workerAddr))
		if err := s.workerGRPC.Serve(workerLis); err != nil {
			logger.Warn().Err(err).Msg("worker service stopped")
		}
	}()

	return nil
}

// Stop gracefully stops both gRPC servers.
func (s *Server) Stop() {
	if s.clientGRPC != nil {
		s.clientGRPC.GracefulStop()
	}
	if s.workerGRPC != nil {
		s.workerGRPC.GracefulStop()
	}
}
