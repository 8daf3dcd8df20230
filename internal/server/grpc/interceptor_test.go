package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestSessionInterceptor_SkipsPublicMethods(t *testing.T) {
	s := newTestServer(&fakeAuth{})
	called := false
	handler := func(ctx context.Context, req any) (any, error) {
		called = true
		_, ok := userFromContext(ctx)
		assert.False(t, ok)
		return "ok", nil
	}

	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Register_FullMethodName}
	resp, err := s.sessionInterceptor(context.Background(), nil, info, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.True(t, called)
}

func TestSessionInterceptor_RejectsMissingOrUnknownSession(t *testing.T) {
	s := newTestServer(&fakeAuth{sessionUsers: map[string]*models.User{}})
	handler := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler must not run")
		return nil, nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Profile_FullMethodName}

	_, err := s.sessionInterceptor(context.Background(), nil, info, handler)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.SessionMetadataKey, "stale"))
	_, err = s.sessionInterceptor(ctx, nil, info, handler)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestSessionInterceptor_PutsUserInContext(t *testing.T) {
	user := &models.User{ID: "u-1", Email: "a@x.com"}
	s := newTestServer(&fakeAuth{sessionUsers: map[string]*models.User{"sid": user}})

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.SessionMetadataKey, "sid"))
	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Logout_FullMethodName}

	_, err := s.sessionInterceptor(ctx, nil, info, func(ctx context.Context, req any) (any, error) {
		got, ok := userFromContext(ctx)
		require.True(t, ok)
		assert.Same(t, user, got)
		return nil, nil
	})
	require.NoError(t, err)
}

func TestMetricsInterceptor(t *testing.T) {
	m := metrics.New()
	s := NewGRPCServer("", logging.Nop(), &fakeAuth{}, m)
	method := pb.AuthService_Login_FullMethodName
	info := &grpc.UnaryServerInfo{FullMethod: method}

	_, err := s.metricsInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)

	_, err = s.metricsInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	})
	require.Error(t, err)

	_, err = s.metricsInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, errors.New("plain")
	})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(method, "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(method, "Unauthenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(method, "Unknown")))
}
