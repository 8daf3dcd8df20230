package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userKey ctxKey = "user"

// sessionMethods require a resolved session.
var sessionMethods = map[string]bool{
	pb.AuthService_Logout_FullMethodName:  true,
	pb.AuthService_Profile_FullMethodName: true,
}

func sessionFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.SessionMetadataKey); len(values) > 0 {
		return values[0]
	}
	return ""
}

// userFromContext returns the user placed by sessionInterceptor.
func userFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

func (s *GRPCServer) sessionInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !sessionMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	user := s.auth.GetUserBySession(ctx, sessionFromMetadata(ctx))
	if user == nil {
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}

	return handler(context.WithValue(ctx, userKey, user), req)
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.metrics.ObserveRPC(info.FullMethod, status.Code(err).String(), time.Since(start))
	return resp, err
}
