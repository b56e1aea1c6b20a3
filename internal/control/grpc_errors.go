package control

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/festival-simulator/internal/engine"
)

var (
	// ErrInvalidRequest is returned for malformed control requests.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotReady is returned when the service has no orchestrator.
	ErrNotReady = errors.New("control service not initialised")
)

// ToStatusError maps engine and control errors onto gRPC status codes.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, engine.ErrAlreadyRunning),
		errors.Is(err, engine.ErrNotIdle),
		errors.Is(err, engine.ErrNotStarted),
		errors.Is(err, engine.ErrStopped):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, ErrNotReady):
		return status.Error(codes.Unavailable, err.Error())

	default:
		return status.Error(codes.Internal, err.Error())
	}
}
