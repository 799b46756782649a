package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Сервис описан вручную поверх well-known типов protobuf, отдельный .proto не нужен.

const (
	InspectorServiceName = "rwsim.Inspector"

	methodGetWorldState = "/rwsim.Inspector/GetWorldState"
	methodSetTimeScale  = "/rwsim.Inspector/SetTimeScale"
	methodRunCommand    = "/rwsim.Inspector/RunCommand"
	methodWatchEvents   = "/rwsim.Inspector/WatchEvents"
)

// InspectorServer is the server API for the Inspector service.
type InspectorServer interface {
	// GetWorldState returns the summary published by the latest step.
	GetWorldState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// SetTimeScale sets the simulation speed and returns the value in effect.
	SetTimeScale(context.Context, *wrapperspb.DoubleValue) (*wrapperspb.DoubleValue, error)
	// RunCommand executes one admin command line.
	RunCommand(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	// WatchEvents streams world events until the client leaves or the server stops.
	WatchEvents(*emptypb.Empty, Inspector_WatchEventsServer) error
}

type Inspector_WatchEventsServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type inspectorWatchEventsServer struct {
	grpc.ServerStream
}

func (x *inspectorWatchEventsServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

func _Inspector_GetWorldState_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InspectorServer).GetWorldState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetWorldState}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InspectorServer).GetWorldState(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Inspector_SetTimeScale_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.DoubleValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InspectorServer).SetTimeScale(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSetTimeScale}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InspectorServer).SetTimeScale(ctx, req.(*wrapperspb.DoubleValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Inspector_RunCommand_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InspectorServer).RunCommand(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRunCommand}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InspectorServer).RunCommand(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Inspector_WatchEvents_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(InspectorServer).WatchEvents(m, &inspectorWatchEventsServer{stream})
}

// Inspector_ServiceDesc is the grpc.ServiceDesc for the Inspector service.
var Inspector_ServiceDesc = grpc.ServiceDesc{
	ServiceName: InspectorServiceName,
	HandlerType: (*InspectorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetWorldState", Handler: _Inspector_GetWorldState_Handler},
		{MethodName: "SetTimeScale", Handler: _Inspector_SetTimeScale_Handler},
		{MethodName: "RunCommand", Handler: _Inspector_RunCommand_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchEvents",
			Handler:       _Inspector_WatchEvents_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "rwsim/inspector.proto",
}

// RegisterInspectorServer registers srv on s.
func RegisterInspectorServer(s grpc.ServiceRegistrar, srv InspectorServer) {
	s.RegisterService(&Inspector_ServiceDesc, srv)
}

// InspectorClient is the client API for the Inspector service.
type InspectorClient interface {
	GetWorldState(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	SetTimeScale(ctx context.Context, in *wrapperspb.DoubleValue, opts ...grpc.CallOption) (*wrapperspb.DoubleValue, error)
	RunCommand(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	WatchEvents(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (Inspector_WatchEventsClient, error)
}

type inspectorClient struct {
	cc grpc.ClientConnInterface
}

func NewInspectorClient(cc grpc.ClientConnInterface) InspectorClient {
	return &inspectorClient{cc}
}

func (c *inspectorClient) GetWorldState(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetWorldState, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inspectorClient) SetTimeScale(ctx context.Context, in *wrapperspb.DoubleValue, opts ...grpc.CallOption) (*wrapperspb.DoubleValue, error) {
	out := new(wrapperspb.DoubleValue)
	if err := c.cc.Invoke(ctx, methodSetTimeScale, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inspectorClient) RunCommand(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, methodRunCommand, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inspectorClient) WatchEvents(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (Inspector_WatchEventsClient, error) {
	stream, err := c.cc.NewStream(ctx, &Inspector_ServiceDesc.Streams[0], methodWatchEvents, opts...)
	if err != nil {
		return nil, err
	}
	x := &inspectorWatchEventsClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type Inspector_WatchEventsClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

type inspectorWatchEventsClient struct {
	grpc.ClientStream
}

func (x *inspectorWatchEventsClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
