package control

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/signalsfoundry/festival-simulator/internal/logging"
)

func TestRequestIDInterceptorUsesInboundHeader(t *testing.T) {
	ic := RequestIDUnaryServerInterceptor(logging.Noop())
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodGetStatus)}
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(requestIDMetadataKey, "req-42"))

	var gotID string
	var gotLog logging.Logger
	_, err := ic(ctx, nil, info, func(ctx context.Context, _ any) (any, error) {
		gotID = logging.RequestIDFromContext(ctx)
		gotLog = logging.LoggerFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "req-42", gotID)
	assert.NotNil(t, gotLog)
}

func TestRequestIDInterceptorGeneratesID(t *testing.T) {
	ic := RequestIDUnaryServerInterceptor(nil)
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodStart)}

	var gotID string
	_, err := ic(context.Background(), nil, info, func(ctx context.Context, _ any) (any, error) {
		gotID = logging.RequestIDFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, gotID)
}

func TestTracingInterceptorNamesSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ic := TracingUnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodPause)}
	_, err := ic(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, ToStatusError(ErrNotReady)
	})
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "Control/Pause", spans[0].Name())
	assert.NotEmpty(t, spans[0].Events())
}
