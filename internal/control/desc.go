// Package control exposes a running orchestrator over gRPC as the
// festival.control.v1.SimulationControl service.
package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "festival.control.v1.SimulationControl"

// Method names of the SimulationControl service.
const (
	MethodGetStatus                = "GetStatus"
	MethodStart                    = "Start"
	MethodPause                    = "Pause"
	MethodResume                   = "Resume"
	MethodStop                     = "Stop"
	MethodEmergencyStop            = "EmergencyStop"
	MethodSetTimeScale             = "SetTimeScale"
	MethodSubmitDecision           = "SubmitDecision"
	MethodGetSnapshot              = "GetSnapshot"
	MethodListIncidents            = "ListIncidents"
	MethodListAlerts               = "ListAlerts"
	MethodTriggerEmergencyProtocol = "TriggerEmergencyProtocol"
)

// FullMethod returns the wire path of method.
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// Server is the SimulationControl service contract. Messages are protobuf
// well-known types so no generated code is needed.
type Server interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Start(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Pause(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Resume(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Stop(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	EmergencyStop(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetTimeScale(context.Context, *wrapperspb.DoubleValue) (*structpb.Struct, error)
	SubmitDecision(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListIncidents(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListAlerts(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	TriggerEmergencyProtocol(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// ServiceDesc describes SimulationControl for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodGetStatus, Server.GetStatus),
		unary(MethodStart, Server.Start),
		unary(MethodPause, Server.Pause),
		unary(MethodResume, Server.Resume),
		unary(MethodStop, Server.Stop),
		unary(MethodEmergencyStop, Server.EmergencyStop),
		unary(MethodSetTimeScale, Server.SetTimeScale),
		unary(MethodSubmitDecision, Server.SubmitDecision),
		unary(MethodGetSnapshot, Server.GetSnapshot),
		unary(MethodListIncidents, Server.ListIncidents),
		unary(MethodListAlerts, Server.ListAlerts),
		unary(MethodTriggerEmergencyProtocol, Server.TriggerEmergencyProtocol),
	},
	Metadata: "festival/control/v1/control.proto",
}

// RegisterServer registers srv with s.
func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds the method descriptor for a handler taking a request of
// type *R.
func unary[R any, PR interface {
	*R
	proto.Message
}](name string, call func(Server, context.Context, PR) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PR(new(R))
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(Server)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(PR))
			})
		},
	}
}
