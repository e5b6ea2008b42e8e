package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const workerServiceName = "fenwick.rpc.WorkerService"

// WorkerServiceServer is the server API for the worker-facing service.
type WorkerServiceServer interface {
	RegisterCollector(context.Context, *RegisterCollectorRequest) (*RegisterCollectorResponse, error)
	LoginCollector(context.Context, *LoginCollectorRequest) (*LoginCollectorResponse, error)
	Heartbeat(context.Context, *HeartbeatRequest) (*HeartbeatResponse, error)
	StreamTasks(*StreamTasksRequest, WorkerService_StreamTasksServer) error
	SubmitTaskResult(context.Context, *SubmitTaskResultRequest) (*SubmitTaskResultResponse, error)
}

// WorkerService_StreamTasksServer is the server-side stream handle for StreamTasks.
type WorkerService_StreamTasksServer interface {
	Send(*TaskAssignment) error
	grpc.ServerStream
}

type workerServiceStreamTasksServer struct {
	grpc.ServerStream
}

func (s *workerServiceStreamTasksServer) Send(m *TaskAssignment) error {
	return s.ServerStream.SendMsg(m)
}

// WorkerServiceClient is the client API for the worker-facing service.
type WorkerServiceClient interface {
	RegisterCollector(ctx context.Context, in *RegisterCollectorRequest, opts ...grpc.CallOption) (*RegisterCollectorResponse, error)
	LoginCollector(ctx context.Context, in *LoginCollectorRequest, opts ...grpc.CallOption) (*LoginCollectorResponse, error)
	Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*HeartbeatResponse, error)
	StreamTasks(ctx context.Context, in *StreamTasksRequest, opts ...grpc.CallOption) (WorkerService_StreamTasksClient, error)
	SubmitTaskResult(ctx context.Context, in *SubmitTaskResultRequest, opts ...grpc.CallOption) (*SubmitTaskResultResponse, error)
}

type workerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewWorkerServiceClient creates a client stub bound to an existing connection.
func NewWorkerServiceClient(cc grpc.ClientConnInterface) WorkerServiceClient {
	return &workerServiceClient{cc}
}

func (c *workerServiceClient) RegisterCollector(ctx context.Context, in *RegisterCollectorRequest, opts ...grpc.CallOption) (*RegisterCollectorResponse, error) {
	out := new(RegisterCollectorResponse)
	if err := c.cc.Invoke(ctx, "/"+workerServiceName+"/RegisterCollector", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerServiceClient) LoginCollector(ctx context.Context, in *LoginCollectorRequest, opts ...grpc.CallOption) (*LoginCollectorResponse, error) {
	out := new(LoginCollectorResponse)
	if err := c.cc.Invoke(ctx, "/"+workerServiceName+"/LoginCollector", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerServiceClient) Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*HeartbeatResponse, error) {
	out := new(HeartbeatResponse)
	if err := c.cc.Invoke(ctx, "/"+workerServiceName+"/Heartbeat", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerServiceClient) SubmitTaskResult(ctx context.Context, in *SubmitTaskResultRequest, opts ...grpc.CallOption) (*SubmitTaskResultResponse, error) {
	out := new(SubmitTaskResultResponse)
	if err := c.cc.Invoke(ctx, "/"+workerServiceName+"/SubmitTaskResult", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerServiceClient) StreamTasks(ctx context.Context, in *StreamTasksRequest, opts ...grpc.CallOption) (WorkerService_StreamTasksClient, error) {
	stream, err := c.cc.NewStream(ctx, &workerServiceStreamTasksDesc, "/"+workerServiceName+"/StreamTasks", opts...)
	if err != nil {
		return nil, err
	}
	x := &workerServiceStreamTasksClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// WorkerService_StreamTasksClient is the client-side stream handle for StreamTasks.
type WorkerService_StreamTasksClient interface {
	Recv() (*TaskAssignment, error)
	grpc.ClientStream
}

type workerServiceStreamTasksClient struct {
	grpc.ClientStream
}

func (x *workerServiceStreamTasksClient) Recv() (*TaskAssignment, error) {
	m := new(TaskAssignment)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

var workerServiceStreamTasksDesc = grpc.StreamDesc{
	StreamName:    "StreamTasks",
	ServerStreams: true,
}

func handlerRegisterCollector(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RegisterCollectorRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerServiceServer).RegisterCollector(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + workerServiceName + "/RegisterCollector"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerServiceServer).RegisterCollector(ctx, req.(*RegisterCollectorRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerLoginCollector(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(LoginCollectorRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerServiceServer).LoginCollector(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + workerServiceName + "/LoginCollector"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerServiceServer).LoginCollector(ctx, req.(*LoginCollectorRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerHeartbeat(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(HeartbeatRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerServiceServer).Heartbeat(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + workerServiceName + "/Heartbeat"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerServiceServer).Heartbeat(ctx, req.(*HeartbeatRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerSubmitTaskResult(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SubmitTaskResultRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerServiceServer).SubmitTaskResult(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + workerServiceName + "/SubmitTaskResult"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerServiceServer).SubmitTaskResult(ctx, req.(*SubmitTaskResultRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func streamHandlerStreamTasks(srv interface{}, stream grpc.ServerStream) error {
	in := new(StreamTasksRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(WorkerServiceServer).StreamTasks(in, &workerServiceStreamTasksServer{stream})
}

// WorkerServiceServiceDesc is the grpc.ServiceDesc for the worker-facing service.
var WorkerServiceServiceDesc = grpc.ServiceDesc{
	ServiceName: workerServiceName,
	HandlerType: (*WorkerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterCollector", Handler: handlerRegisterCollector},
		{MethodName: "LoginCollector", Handler: handlerLoginCollector},
		{MethodName: "Heartbeat", Handler: handlerHeartbeat},
		{MethodName: "SubmitTaskResult", Handler: handlerSubmitTaskResult},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamTasks",
			Handler:       streamHandlerStreamTasks,
			ServerStreams: true,
		},
	},
	Metadata: "fenwick/worker_service.proto",
}

// RegisterWorkerServiceServer registers an implementation with a grpc.Server.
func RegisterWorkerServiceServer(s grpc.ServiceRegistrar, srv WorkerServiceServer) {
	s.RegisterService(&WorkerServiceServiceDesc, srv)
}
