package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const clientServiceName = "fenwick.rpc.ClientService"

// ClientServiceServer is the server API for the client-facing service.
type ClientServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	StartTask(context.Context, *StartTaskRequest) (*StartTaskResponse, error)
	StreamResults(*StreamResultsRequest, ClientService_StreamResultsServer) error
	ListAvailableCategories(context.Context, *Empty) (*ListAvailableCategoriesResponse, error)
	ListAvailableLocations(context.Context, *Empty) (*ListAvailableLocationsResponse, error)
}

// Empty is used by RPCs with no request fields.
type Empty struct{}

// ClientService_StreamResultsServer is the server-side stream handle for StreamResults.
type ClientService_StreamResultsServer interface {
	Send(*ResultEnvelope) error
	grpc.ServerStream
}

type clientServiceStreamResultsServer struct {
	grpc.ServerStream
}

func (s *clientServiceStreamResultsServer) Send(m *ResultEnvelope) error {
	return s.ServerStream.SendMsg(m)
}

// ClientServiceClient is the client API for the client-facing service.
type ClientServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	StartTask(ctx context.Context, in *StartTaskRequest, opts ...grpc.CallOption) (*StartTaskResponse, error)
	StreamResults(ctx context.Context, in *StreamResultsRequest, opts ...grpc.CallOption) (ClientService_StreamResultsClient, error)
	ListAvailableCategories(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListAvailableCategoriesResponse, error)
	ListAvailableLocations(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListAvailableLocationsResponse, error)
}

type clientServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewClientServiceClient creates a client stub bound to an existing connection.
func NewClientServiceClient(cc grpc.ClientConnInterface) ClientServiceClient {
	return &clientServiceClient{cc}
}

func (c *clientServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	out := new(RegisterResponse)
	if err := c.cc.Invoke(ctx, "/"+clientServiceName+"/Register", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clientServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	out := new(LoginResponse)
	if err := c.cc.Invoke(ctx, "/"+clientServiceName+"/Login", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clientServiceClient) StartTask(ctx context.Context, in *StartTaskRequest, opts ...grpc.CallOption) (*StartTaskResponse, error) {
	out := new(StartTaskResponse)
	if err := c.cc.Invoke(ctx, "/"+clientServiceName+"/StartTask", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clientServiceClient) ListAvailableCategories(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListAvailableCategoriesResponse, error) {
	out := new(ListAvailableCategoriesResponse)
	if err := c.cc.Invoke(ctx, "/"+clientServiceName+"/ListAvailableCategories", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clientServiceClient) ListAvailableLocations(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListAvailableLocationsResponse, error) {
	out := new(ListAvailableLocationsResponse)
	if err := c.cc.Invoke(ctx, "/"+clientServiceName+"/ListAvailableLocations", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clientServiceClient) StreamResults(ctx context.Context, in *StreamResultsRequest, opts ...grpc.CallOption) (ClientService_StreamResultsClient, error) {
	stream, err := c.cc.NewStream(ctx, &clientServiceStreamResultsDesc, "/"+clientServiceName+"/StreamResults", opts...)
	if err != nil {
		return nil, err
	}
	x := &clientServiceStreamResultsClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// ClientService_StreamResultsClient is the client-side stream handle for StreamResults.
type ClientService_StreamResultsClient interface {
	Recv() (*ResultEnvelope, error)
	grpc.ClientStream
}

type clientServiceStreamResultsClient struct {
	grpc.ClientStream
}

func (x *clientServiceStreamResultsClient) Recv() (*ResultEnvelope, error) {
	m := new(ResultEnvelope)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

var clientServiceStreamResultsDesc = grpc.StreamDesc{
	StreamName:    "StreamResults",
	ServerStreams: true,
}

func handlerRegister(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RegisterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClientServiceServer).Register(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + clientServiceName + "/Register"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClientServiceServer).Register(ctx, req.(*RegisterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerLogin(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(LoginRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClientServiceServer).Login(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + clientServiceName + "/Login"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClientServiceServer).Login(ctx, req.(*LoginRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerStartTask(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(StartTaskRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClientServiceServer).StartTask(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + clientServiceName + "/StartTask"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClientServiceServer).StartTask(ctx, req.(*StartTaskRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerListAvailableCategories(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClientServiceServer).ListAvailableCategories(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + clientServiceName + "/ListAvailableCategories"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClientServiceServer).ListAvailableCategories(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func handlerListAvailableLocations(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClientServiceServer).ListAvailableLocations(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + clientServiceName + "/ListAvailableLocations"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClientServiceServer).ListAvailableLocations(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func streamHandlerStreamResults(srv interface{}, stream grpc.ServerStream) error {
	in := new(StreamResultsRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ClientServiceServer).StreamResults(in, &clientServiceStreamResultsServer{stream})
}

// ClientServiceServiceDesc is the grpc.ServiceDesc for the client-facing service.
var ClientServiceServiceDesc = grpc.ServiceDesc{
	ServiceName: clientServiceName,
	HandlerType: (*ClientServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: handlerRegister},
		{MethodName: "Login", Handler: handlerLogin},
		{MethodName: "StartTask", Handler: handlerStartTask},
		{MethodName: "ListAvailableCategories", Handler: handlerListAvailableCategories},
		{MethodName: "ListAvailableLocations", Handler: handlerListAvailableLocations},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamResults",
			Handler:       streamHandlerStreamResults,
			ServerStreams: true,
		},
	},
	Metadata: "fenwick/client_service.proto",
}

// RegisterClientServiceServer registers an implementation with a grpc.Server.
func RegisterClientServiceServer(s grpc.ServiceRegistrar, srv ClientServiceServer) {
	s.RegisterService(&ClientServiceServiceDesc, srv)
}
