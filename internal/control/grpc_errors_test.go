package control

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/festival-simulator/internal/engine"
)

func TestToStatusError(t *testing.T) {
	cases := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("%w: bad", ErrInvalidRequest), codes.InvalidArgument},
		{engine.ErrAlreadyRunning, codes.FailedPrecondition},
		{fmt.Errorf("%w: state is stopped", engine.ErrNotIdle), codes.FailedPrecondition},
		{engine.ErrNotStarted, codes.FailedPrecondition},
		{engine.ErrStopped, codes.FailedPrecondition},
		{ErrNotReady, codes.Unavailable},
		{errors.New("boom"), codes.Internal},
		{status.Error(codes.NotFound, "gone"), codes.NotFound},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, status.Code(ToStatusError(tc.err)), tc.err.Error())
	}
	assert.NoError(t, ToStatusError(nil))
}
