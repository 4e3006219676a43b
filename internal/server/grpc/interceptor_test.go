package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type debugRecorder struct {
	logging.Nop
	args []any
}

func (d *debugRecorder) Debug(_ context.Context, _ string, args ...any) { d.args = args }
func (d *debugRecorder) With(...any) logging.Logger                     { return d }

func TestLoggingInterceptor(t *testing.T) {
	rec := &debugRecorder{}
	s := NewHealthServer("unused", rec, &fakePinger{}, 0, nil)
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	resp, err := s.loggingInterceptor(context.Background(), nil, info,
		func(context.Context, any) (any, error) { return "ok", nil })
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Contains(t, rec.args, "/grpc.health.v1.Health/Check")
	assert.Contains(t, rec.args, codes.OK.String())

	_, err = s.loggingInterceptor(context.Background(), nil, info,
		func(context.Context, any) (any, error) { return nil, status.Error(codes.NotFound, "x") })
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Contains(t, rec.args, codes.NotFound.String())
}
