// Package client is a thin Go SDK over the dispatcher's client-facing
// service, grounded on the teacher's pkg/client/client.go: a *grpc.ClientConn
// plus a generated-shape ...Client stub, with typed wrapper methods that
// each apply a bounded context timeout. This repo drops the teacher's mTLS
// dial path (there is no CA/cert issuance in this domain) in favor of a
// plain insecure dial, since the wire codec (pkg/rpc's JSON "proto" codec)
// carries no transport security of its own either.
package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cuemby/fenwick/pkg/rpc"
)

const defaultTimeout = 10 * time.Second

// Client wraps a connection to the dispatcher's client-facing service.
type Client struct {
	conn   *grpc.ClientConn
	client rpc.ClientServiceClient
}

// New dials addr and returns a ready Client.
func New(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial dispatcher client service %s: %w", addr, err)
	}
	return &Client{conn: conn, client: rpc.NewClientServiceClient(conn)}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Register creates a new account.
func (c *Client) Register(username, password string) (success bool, message string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	resp, err := c.client.Register(ctx, &rpc.RegisterRequest{Username: username, Password: password})
	if err != nil {
		return false, "", err
	}
	return resp.Success, resp.Message, nil
}

// Login authenticates and returns a session token on success.
func (c *Client) Login(username, password string) (success bool, message, token string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	resp, err := c.client.Login(ctx, &rpc.LoginRequest{Username: username, Password: password})
	if err != nil {
		return false, "", "", err
	}
	return resp.Success, resp.Message, resp.Token, nil
}

// StartTask creates a search task. categories and location are passed
// through as comma-separated strings, matching the wire contract.
func (c *Client) StartTask(token, keywords, categories, location string, start, end time.Time) (success bool, message, taskID string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	resp, err := c.client.StartTask(ctx, &rpc.StartTaskRequest{
		Token:      token,
		Keywords:   keywords,
		Categories: categories,
		Location:   location,
		StartTime:  start,
		EndTime:    end,
	})
	if err != nil {
		return false, "", "", err
	}
	return resp.Success, resp.Message, resp.TaskID, nil
}

// ListAvailableCategories returns the dispatcher's current catalog categories.
func (c *Client) ListAvailableCategories() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	resp, err := c.client.ListAvailableCategories(ctx, &rpc.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// ListAvailableLocations returns the dispatcher's current catalog locations.
func (c *Client) ListAvailableLocations() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	resp, err := c.client.ListAvailableLocations(ctx, &rpc.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Locations, nil
}

// StreamResults opens the server-stream for a task's results. The caller
// must call Recv in a loop until it returns an error (typically io.EOF
// when the dispatcher closes the stream at task-terminal state).
func (c *Client) StreamResults(ctx context.Context, token, taskID string) (rpc.ClientService_StreamResultsClient, error) {
	return c.client.StreamResults(ctx, &rpc.StreamResultsRequest{Token: token, TaskID: taskID})
}
