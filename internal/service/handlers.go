package service

import (
	"context"
	"errors"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var _ InspectorServer = (*InspectorService)(nil)

// RegisterServer registers the InspectorService on the given gRPC server.
func (s *InspectorService) RegisterServer(grpcServer *grpc.Server) {
	RegisterInspectorServer(grpcServer, s)
}

// GetWorldState returns the latest published summary.
func (s *InspectorService) GetWorldState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	out, err := summaryToStruct(s.loop.Summary())
	if err != nil {
		s.logger.Errorf("Failed to encode summary: %v", err)
		return nil, status.Errorf(codes.Internal, "encode summary: %v", err)
	}
	return out, nil
}

// SetTimeScale changes the simulation speed.
func (s *InspectorService) SetTimeScale(ctx context.Context, req *wrapperspb.DoubleValue) (*wrapperspb.DoubleValue, error) {
	v := req.GetValue()
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, status.Errorf(codes.InvalidArgument, "time scale must be a positive number, got %v", v)
	}
	s.loop.SetTimeScale(v)
	s.logger.Infof("Time scale set to %v", v)
	return wrapperspb.Double(s.loop.TimeScale()), nil
}

// RunCommand executes an admin command registered in the plugin registry.
func (s *InspectorService) RunCommand(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	commandsRun.Add(1)
	out, err := RunCommandLine(s.registry, req.GetValue())
	switch {
	case errors.Is(err, ErrEmptyCommand):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrUnknownCommand):
		return nil, status.Error(codes.NotFound, err.Error())
	case err != nil:
		s.logger.Warnf("Command %q failed: %v", req.GetValue(), err)
		return nil, status.Error(codes.Unknown, err.Error())
	}
	return wrapperspb.String(out), nil
}

// WatchEvents streams world events to the client.
func (s *InspectorService) WatchEvents(_ *emptypb.Empty, stream Inspector_WatchEventsServer) error {
	w := newWatcher()
	if !s.addWatcher(w) {
		return status.Error(codes.Unavailable, "inspector is shutting down")
	}
	defer s.removeWatcher(w.id)
	s.logger.Infof("Watcher %s connected", w.id)

	ctx := stream.Context()
	for {
		msg, ok := w.next(ctx)
		if !ok {
			s.logger.Infof("Watcher %s disconnected", w.id)
			return nil
		}
		if err := stream.Send(msg); err != nil {
			s.logger.Warnf("Error sending to watcher %s: %v", w.id, err)
			return err
		}
	}
}
