// Package grpc exposes the auth service over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// AuthService is the subset of services.AuthService used by the handlers.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	ValidateLogin(ctx context.Context, email, password string) bool
	CreateSession(ctx context.Context, email string) (string, bool, error)
	GetUserBySession(ctx context.Context, token string) *models.User
	DestroySession(ctx context.Context, userID string) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	RedeemPasswordReset(ctx context.Context, token, newPassword string) error
}

type GRPCServer struct {
	pb.UnimplementedAuthServiceServer

	address string
	auth    AuthService
	metrics *metrics.Metrics
	logger  logging.Logger
}

// NewGRPCServer builds the server. m may be nil to disable request metrics.
func NewGRPCServer(address string, l logging.Logger, auth AuthService, m *metrics.Metrics) *GRPCServer {
	return &GRPCServer{
		address: address,
		auth:    auth,
		metrics: m,
		logger:  l.With("module", "grpc_server"),
	}
}

func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	interceptors := []grpc.UnaryServerInterceptor{}
	if s.metrics != nil {
		interceptors = append(interceptors, s.metricsInterceptor)
	}
	interceptors = append(interceptors, s.sessionInterceptor)

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	pb.RegisterAuthServiceServer(srv, s)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is canceled, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv, hs := s.newServer()

	serveDone := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			hs.Shutdown()
			srv.GracefulStop()
		case <-serveDone:
		}
	}()

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(pb.AuthService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	err := srv.Serve(lis)
	close(serveDone)
	<-stopped

	if ctx.Err() != nil {
		return nil
	}
	return err
}
