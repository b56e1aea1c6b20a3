package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls SimulationControl over an established connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// WithRequestID attaches id as the x-request-id header of outgoing calls.
func WithRequestID(ctx context.Context, id string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, requestIDMetadataKey, id)
}

func (c *Client) invoke(ctx context.Context, method string, in proto.Message, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetStatus, &emptypb.Empty{}, opts...)
}

func (c *Client) Start(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodStart, &emptypb.Empty{}, opts...)
}

func (c *Client) Pause(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodPause, &emptypb.Empty{}, opts...)
}

func (c *Client) Resume(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodResume, &emptypb.Empty{}, opts...)
}

func (c *Client) Stop(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodStop, &emptypb.Empty{}, opts...)
}

func (c *Client) EmergencyStop(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodEmergencyStop, &emptypb.Empty{}, opts...)
}

func (c *Client) SetTimeScale(ctx context.Context, scale float64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodSetTimeScale, wrapperspb.Double(scale), opts...)
}

// SubmitDecision sends fields, which must include "type", as a decision.
func (c *Client) SubmitDecision(ctx context.Context, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, MethodSubmitDecision, in, opts...)
}

func (c *Client) GetSnapshot(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetSnapshot, &emptypb.Empty{}, opts...)
}

func (c *Client) ListIncidents(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListIncidents, &emptypb.Empty{}, opts...)
}

func (c *Client) ListAlerts(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListAlerts, &emptypb.Empty{}, opts...)
}

func (c *Client) TriggerEmergencyProtocol(ctx context.Context, protocol string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodTriggerEmergencyProtocol, wrapperspb.String(protocol), opts...)
}
