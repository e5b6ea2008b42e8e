package dispatcher_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cuemby/fenwick/pkg/api"
	"github.com/cuemby/fenwick/pkg/catalog"
	"github.com/cuemby/fenwick/pkg/dispatcher"
	"github.com/cuemby/fenwick/pkg/rpc"
	"github.com/cuemby/fenwick/pkg/taskstore"
	"github.com/cuemby/fenwick/pkg/types"
	"github.com/cuemby/fenwick/pkg/userstore"
)

// freePort asks the OS for an ephemeral TCP port by binding and closing.
func freePort(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	return addr
}

func dial(t *testing.T, addr string) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	return conn
}

// TestHappyPathEndToEnd drives scenario S1 over a real TCP loopback
// gRPC server: register + login a client, register + login + heartbeat a
// collector so a live worker exists, start a task whose catalog match is a
// single source, observe the assignment over StreamTasks, submit a result,
// and observe it over
// StreamResults before the task's end_time sweeps it to COMPLETED.
func TestHappyPathEndToEnd(t *testing.T) {
	dir := t.TempDir()

	sourcesPath := filepath.Join(dir, "sources.json")
	sources := []types.Source{
		{ID: "s1", Name: "Source One", URL: "https://example.test/feed", Categories: []string{"general"}, Locations: []string{"international"}},
	}
	data, err := json.Marshal(sources)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(sourcesPath, data, 0o600))

	tasks, err := taskstore.NewBoltStore(filepath.Join(dir, "tasks.db"))
	require.NoError(t, err)
	defer tasks.Close()

	users, err := userstore.Open(filepath.Join(dir, "users.db"))
	require.NoError(t, err)
	defer users.Close()

	cat := catalog.New(sourcesPath)

	disp := dispatcher.New(dispatcher.Deps{
		Tasks:                tasks,
		Users:                users,
		Catalog:              cat,
		ResultQueueHighWater: 100,
		HeartbeatTimeout:     2 * time.Second,
		SweeperInterval:      200 * time.Millisecond,
	})
	defer disp.Close()

	server := api.NewServer(disp, 200*time.Millisecond)
	clientAddr := freePort(t)
	workerAddr := freePort(t)
	require.NoError(t, server.Start(clientAddr, workerAddr))
	defer server.Stop()

	clientConn := dial(t, clientAddr)
	defer clientConn.Close()
	clientRPC := rpc.NewClientServiceClient(clientConn)

	workerConn := dial(t, workerAddr)
	defer workerConn.Close()
	workerRPC := rpc.NewWorkerServiceClient(workerConn)

	ctx := context.Background()

	regResp, err := clientRPC.Register(ctx, &rpc.RegisterRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	require.True(t, regResp.Success)

	loginResp, err := clientRPC.Login(ctx, &rpc.LoginRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	require.True(t, loginResp.Success)
	clientToken := loginResp.Token

	workerRegResp, err := workerRPC.RegisterCollector(ctx, &rpc.RegisterCollectorRequest{Name: "w1", Secret: "s1secret"})
	require.NoError(t, err)
	require.True(t, workerRegResp.Success)

	workerLoginResp, err := workerRPC.LoginCollector(ctx, &rpc.LoginCollectorRequest{Name: "w1", Secret: "s1secret"})
	require.NoError(t, err)
	require.True(t, workerLoginResp.Success)
	workerToken := workerLoginResp.Token

	_, err = workerRPC.Heartbeat(ctx, &rpc.HeartbeatRequest{Token: workerToken, Timestamp: time.Now().UTC()})
	require.NoError(t, err)

	start := time.Now().UTC()
	end := start.Add(2 * time.Second)
	startResp, err := clientRPC.StartTask(ctx, &rpc.StartTaskRequest{
		Token:      clientToken,
		Keywords:   "flood",
		Categories: "general",
		Location:   "international",
		StartTime:  start,
		EndTime:    end,
	})
	require.NoError(t, err)
	require.True(t, startResp.Success)
	require.NotEmpty(t, startResp.TaskID)
	taskID := startResp.TaskID

	streamCtx, cancelStream := context.WithTimeout(ctx, 5*time.Second)
	defer cancelStream()
	taskStream, err := workerRPC.StreamTasks(streamCtx, &rpc.StreamTasksRequest{Token: workerToken})
	require.NoError(t, err)

	assignment, err := taskStream.Recv()
	require.NoError(t, err)
	require.Equal(t, taskID, assignment.TaskID)
	require.Equal(t, []string{"s1"}, assignment.Sources)

	submitResp, err := workerRPC.SubmitTaskResult(ctx, &rpc.SubmitTaskResultRequest{
		Token:     workerToken,
		TaskID:    taskID,
		Timestamp: time.Now().UTC(),
		Result:    []byte(`{"hits":1}`),
	})
	require.NoError(t, err)
	require.True(t, submitResp.Success)

	resultStream, err := clientRPC.StreamResults(ctx, &rpc.StreamResultsRequest{Token: clientToken, TaskID: taskID})
	require.NoError(t, err)

	envelope, err := resultStream.Recv()
	require.NoError(t, err)
	require.Equal(t, []byte(`{"hits":1}`), envelope.Result)

	_, err = resultStream.Recv()
	require.ErrorIs(t, err, io.EOF)
}
