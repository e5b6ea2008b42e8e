package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cuemby/fenwick/pkg/rpc"
)

// CollectorClient wraps a connection to the dispatcher's worker-facing
// service, used by collector processes.
type CollectorClient struct {
	conn   *grpc.ClientConn
	client rpc.WorkerServiceClient
}

// NewCollectorClient dials addr and returns a ready CollectorClient.
func NewCollectorClient(addr string) (*CollectorClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial dispatcher worker service %s: %w", addr, err)
	}
	return &CollectorClient{conn: conn, client: rpc.NewWorkerServiceClient(conn)}, nil
}

// Close closes the underlying connection.
func (c *CollectorClient) Close() error {
	return c.conn.Close()
}

// RegisterCollector registers a new worker identity.
func (c *CollectorClient) RegisterCollector(name, secret string) (success bool, message string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	resp, err := c.client.RegisterCollector(ctx, &rpc.RegisterCollectorRequest{Name: name, Secret: secret})
	if err != nil {
		return false, "", err
	}
	return resp.Success, resp.Message, nil
}

// LoginCollector authenticates and returns a fresh fleet session token.
func (c *CollectorClient) LoginCollector(name, secret string) (success bool, message, token string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	resp, err := c.client.LoginCollector(ctx, &rpc.LoginCollectorRequest{Name: name, Secret: secret})
	if err != nil {
		return false, "", "", err
	}
	return resp.Success, resp.Message, resp.Token, nil
}

// Heartbeat reports liveness.
func (c *CollectorClient) Heartbeat(token string, ts time.Time) (success bool, message string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	resp, err := c.client.Heartbeat(ctx, &rpc.HeartbeatRequest{Token: token, Timestamp: ts})
	if err != nil {
		return false, "", err
	}
	return resp.Success, resp.Message, nil
}

// SubmitTaskResult delivers one collected result envelope.
func (c *CollectorClient) SubmitTaskResult(token, taskID string, ts time.Time, result []byte) (success bool, message string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	resp, err := c.client.SubmitTaskResult(ctx, &rpc.SubmitTaskResultRequest{
		Token:     token,
		TaskID:    taskID,
		Timestamp: ts,
		Result:    result,
	})
	if err != nil {
		return false, "", err
	}
	return resp.Success, resp.Message, nil
}

// StreamTasks opens the server-stream of task assignments. The caller
// calls Recv in a loop until the dispatcher closes the stream (worker
// purged by failover) or the context is cancelled.
func (c *CollectorClient) StreamTasks(ctx context.Context, token string) (rpc.WorkerService_StreamTasksClient, error) {
	return c.client.StreamTasks(ctx, &rpc.StreamTasksRequest{Token: token})
}
