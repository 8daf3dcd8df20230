package grpc

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
)

type harness struct {
	client  pb.AuthServiceClient
	health  healthpb.HealthClient
	metrics *metrics.Metrics
}

// startServer runs a real server over bufconn backed by the in-memory store.
func startServer(t *testing.T) *harness {
	t.Helper()

	m := metrics.New()
	svc := services.NewAuthService(
		users.NewInMemoryRepository(),
		cryptox.NewBcryptHasher(bcrypt.MinCost),
		cryptox.NewTokenGenerator(0),
		logging.Nop(),
		services.Options{Events: m},
	)
	srv := NewGRPCServer("bufnet", logging.Nop(), svc, m)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	return &harness{
		client:  pb.NewAuthServiceClient(conn),
		health:  healthpb.NewHealthClient(conn),
		metrics: m,
	}
}

func withSession(ctx context.Context, sid string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.SessionMetadataKey, sid)
}

func TestEndToEnd_OverGRPC(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	h := startServer(t)
	ctx := context.Background()
	const (
		email  = "guillaume@holberton.io"
		passwd = "b4l0u"
		newPw  = "t4rt1fl3tt3"
	)

	reg, err := h.client.Register(ctx, &pb.RegisterRequest{Email: email, Password: passwd})
	require.NoError(t, err)
	assert.True(t, proto.Equal(&pb.RegisterResponse{Email: email, Message: "user created"}, reg))

	_, err = h.client.Register(ctx, &pb.RegisterRequest{Email: email, Password: passwd})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = h.client.Login(ctx, &pb.LoginRequest{Email: email, Password: newPw})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = h.client.Profile(ctx, &pb.ProfileRequest{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	login, err := h.client.Login(ctx, &pb.LoginRequest{Email: email, Password: passwd})
	require.NoError(t, err)
	assert.Equal(t, "logged in", login.Message)
	require.NotEmpty(t, login.GetSessionId())

	prof, err := h.client.Profile(withSession(ctx, login.GetSessionId()), &pb.ProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, email, prof.Email)

	out, err := h.client.Logout(withSession(ctx, login.GetSessionId()), &pb.LogoutRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Bienvenue", out.Message)

	_, err = h.client.Profile(withSession(ctx, login.GetSessionId()), &pb.ProfileRequest{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = h.client.GetResetPasswordToken(ctx, &pb.ResetPasswordTokenRequest{Email: "nobody@x.com"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	reset, err := h.client.GetResetPasswordToken(ctx, &pb.ResetPasswordTokenRequest{Email: email})
	require.NoError(t, err)
	assert.Equal(t, email, reset.Email)
	require.NotEmpty(t, reset.ResetToken)

	upd, err := h.client.UpdatePassword(ctx, &pb.UpdatePasswordRequest{Email: email, ResetToken: reset.ResetToken, NewPassword: newPw})
	require.NoError(t, err)
	assert.True(t, proto.Equal(&pb.UpdatePasswordResponse{Email: email, Message: "Password updated"}, upd))

	_, err = h.client.UpdatePassword(ctx, &pb.UpdatePasswordRequest{Email: email, ResetToken: reset.ResetToken, NewPassword: "again"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = h.client.Login(ctx, &pb.LoginRequest{Email: email, Password: newPw})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.AuthEvents.WithLabelValues(services.EventRegistered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.AuthEvents.WithLabelValues(services.EventPasswordReset)))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.RequestsTotal.WithLabelValues(pb.AuthService_Login_FullMethodName, "OK")))
}

func TestRegister_OverlongPasswordOverGRPC(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	h := startServer(t)
	ctx := context.Background()

	_, err := h.client.Register(ctx, &pb.RegisterRequest{Email: "long@x.com", Password: strings.Repeat("a", 73)})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "password is too long", status.Convert(err).Message())

	_, err = h.client.Register(ctx, &pb.RegisterRequest{Email: "long@x.com", Password: strings.Repeat("a", 72)})
	require.NoError(t, err)
}

func TestHealth_Serving(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	h := startServer(t)

	for _, svc := range []string{"", pb.AuthService_ServiceDesc.ServiceName} {
		resp, err := h.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: svc})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:0", logging.Nop(), &fakeAuth{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), &fakeAuth{}, nil)
	assert.Error(t, srv.Run(context.Background()))
}
