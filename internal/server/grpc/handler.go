package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) internalError(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, op+" failed", "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}

// passwordRejected maps passwords the hasher refuses to InvalidArgument and
// returns nil for any other error.
func passwordRejected(err error) error {
	switch {
	case errors.Is(err, cryptox.ErrEmptyPassword):
		return status.Error(codes.InvalidArgument, "password is required")
	case errors.Is(err, cryptox.ErrPasswordTooLong):
		return status.Error(codes.InvalidArgument, "password is too long")
	}
	return nil
}

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}

	_, err := s.auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, status.Error(codes.AlreadyExists, "email already registered")
		}
		if st := passwordRejected(err); st != nil {
			return nil, st
		}
		return nil, s.internalError(ctx, "register", err)
	}

	return &pb.RegisterResponse{Email: req.Email, Message: "user created"}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
	if !s.auth.ValidateLogin(ctx, req.Email, req.Password) {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}

	token, ok, err := s.auth.CreateSession(ctx, req.Email)
	if err != nil {
		return nil, s.internalError(ctx, "create session", err)
	}
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}

	return &pb.LoginResponse{Email: req.Email, Message: "logged in", SessionId: token}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *pb.LogoutRequest) (*pb.LogoutResponse, error) {
	user, ok := userFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}

	if err := s.auth.DestroySession(ctx, user.ID); err != nil {
		return nil, s.internalError(ctx, "destroy session", err)
	}

	return &pb.LogoutResponse{Message: "Bienvenue"}, nil
}

func (s *GRPCServer) Profile(ctx context.Context, _ *pb.ProfileRequest) (*pb.ProfileResponse, error) {
	user, ok := userFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}
	return &pb.ProfileResponse{Email: user.Email}, nil
}

func (s *GRPCServer) GetResetPasswordToken(ctx context.Context, req *pb.ResetPasswordTokenRequest) (*pb.ResetPasswordTokenResponse, error) {
	token, err := s.auth.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrorUserNotFound) {
			return nil, status.Error(codes.PermissionDenied, "forbidden")
		}
		return nil, s.internalError(ctx, "request password reset", err)
	}

	return &pb.ResetPasswordTokenResponse{Email: req.Email, ResetToken: token}, nil
}

func (s *GRPCServer) UpdatePassword(ctx context.Context, req *pb.UpdatePasswordRequest) (*pb.UpdatePasswordResponse, error) {
	if req.NewPassword == "" {
		return nil, status.Error(codes.InvalidArgument, "new password is required")
	}

	err := s.auth.RedeemPasswordReset(ctx, req.ResetToken, req.NewPassword)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorInvalidToken):
		return nil, status.Error(codes.PermissionDenied, "invalid reset token")
	case errors.Is(err, common.ErrorConflict):
		return nil, status.Error(codes.Aborted, "reset token already used")
	default:
		if st := passwordRejected(err); st != nil {
			return nil, st
		}
		return nil, s.internalError(ctx, "redeem password reset", err)
	}

	return &pb.UpdatePasswordResponse{Email: req.Email, Message: "Password updated"}, nil
}
