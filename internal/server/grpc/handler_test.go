package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

var errStorage = fmt.Errorf("%w: db error: timeout", common.ErrorStorage)

func newTestServer(f *fakeAuth) *GRPCServer {
	return NewGRPCServer("", logging.Nop(), f, nil)
}

func assertCode(t *testing.T, err error, want codes.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, status.Code(err), err.Error())
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	resp, err := newTestServer(&fakeAuth{}).Register(ctx, &pb.RegisterRequest{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, proto.Equal(&pb.RegisterResponse{Email: "a@x.com", Message: "user created"}, resp))

	_, err = newTestServer(&fakeAuth{regErr: common.ErrorAlreadyExists}).Register(ctx, &pb.RegisterRequest{Email: "a@x.com", Password: "pw"})
	assertCode(t, err, codes.AlreadyExists)
	assert.Equal(t, "email already registered", status.Convert(err).Message())

	_, err = newTestServer(&fakeAuth{regErr: errStorage}).Register(ctx, &pb.RegisterRequest{Email: "a@x.com", Password: "pw"})
	assertCode(t, err, codes.Internal)
	assert.NotContains(t, status.Convert(err).Message(), "timeout")

	tooLong := fmt.Errorf("register: hash password: %w", cryptox.ErrPasswordTooLong)
	_, err = newTestServer(&fakeAuth{regErr: tooLong}).Register(ctx, &pb.RegisterRequest{Email: "a@x.com", Password: "pw"})
	assertCode(t, err, codes.InvalidArgument)
	assert.Equal(t, "password is too long", status.Convert(err).Message())

	empty := fmt.Errorf("register: hash password: %w", cryptox.ErrEmptyPassword)
	_, err = newTestServer(&fakeAuth{regErr: empty}).Register(ctx, &pb.RegisterRequest{Email: "a@x.com", Password: "pw"})
	assertCode(t, err, codes.InvalidArgument)

	_, err = newTestServer(&fakeAuth{}).Register(ctx, &pb.RegisterRequest{Email: "", Password: "pw"})
	assertCode(t, err, codes.InvalidArgument)
	_, err = newTestServer(&fakeAuth{}).Register(ctx, &pb.RegisterRequest{Email: "a@x.com"})
	assertCode(t, err, codes.InvalidArgument)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	req := &pb.LoginRequest{Email: "a@x.com", Password: "pw"}

	tests := []struct {
		name string
		fake *fakeAuth
		code codes.Code
	}{
		{"ok", &fakeAuth{loginOK: true, sessionToken: "sid", sessionOK: true}, codes.OK},
		{"bad credentials", &fakeAuth{loginOK: false}, codes.Unauthenticated},
		{"user vanished", &fakeAuth{loginOK: true, sessionOK: false}, codes.Unauthenticated},
		{"storage", &fakeAuth{loginOK: true, sessionErr: errStorage}, codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newTestServer(tt.fake).Login(ctx, req)
			if tt.code == codes.OK {
				require.NoError(t, err)
				assert.True(t, proto.Equal(&pb.LoginResponse{Email: "a@x.com", Message: "logged in", SessionId: "sid"}, resp))
				return
			}
			assertCode(t, err, tt.code)
		})
	}
}

func TestLogoutAndProfile_RequireUserInContext(t *testing.T) {
	s := newTestServer(&fakeAuth{})
	ctx := context.Background()

	_, err := s.Logout(ctx, &pb.LogoutRequest{})
	assertCode(t, err, codes.PermissionDenied)

	_, err = s.Profile(ctx, &pb.ProfileRequest{})
	assertCode(t, err, codes.PermissionDenied)
}

func TestLogout(t *testing.T) {
	f := &fakeAuth{}
	s := newTestServer(f)
	ctx := context.WithValue(context.Background(), userKey, &models.User{ID: "u-1", Email: "a@x.com"})

	resp, err := s.Logout(ctx, &pb.LogoutRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Bienvenue", resp.Message)
	assert.Equal(t, "u-1", f.destroyedFor)

	f.destroyErr = errStorage
	_, err = s.Logout(ctx, &pb.LogoutRequest{})
	assertCode(t, err, codes.Internal)
}

func TestProfile(t *testing.T) {
	s := newTestServer(&fakeAuth{})
	ctx := context.WithValue(context.Background(), userKey, &models.User{ID: "u-1", Email: "a@x.com"})

	resp, err := s.Profile(ctx, &pb.ProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", resp.Email)
}

func TestGetResetPasswordToken(t *testing.T) {
	ctx := context.Background()
	req := &pb.ResetPasswordTokenRequest{Email: "a@x.com"}

	resp, err := newTestServer(&fakeAuth{resetToken: "rt"}).GetResetPasswordToken(ctx, req)
	require.NoError(t, err)
	assert.True(t, proto.Equal(&pb.ResetPasswordTokenResponse{Email: "a@x.com", ResetToken: "rt"}, resp))

	_, err = newTestServer(&fakeAuth{resetErr: common.ErrorUserNotFound}).GetResetPasswordToken(ctx, req)
	assertCode(t, err, codes.PermissionDenied)
	assert.Equal(t, "forbidden", status.Convert(err).Message())

	_, err = newTestServer(&fakeAuth{resetErr: errStorage}).GetResetPasswordToken(ctx, req)
	assertCode(t, err, codes.Internal)
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	req := &pb.UpdatePasswordRequest{Email: "a@x.com", ResetToken: "rt", NewPassword: "new"}

	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"ok", nil, codes.OK},
		{"invalid token", common.ErrorInvalidToken, codes.PermissionDenied},
		{"conflict", common.ErrorConflict, codes.Aborted},
		{"password too long", fmt.Errorf("redeem password reset: hash password: %w", cryptox.ErrPasswordTooLong), codes.InvalidArgument},
		{"password empty", fmt.Errorf("redeem password reset: hash password: %w", cryptox.ErrEmptyPassword), codes.InvalidArgument},
		{"storage", errStorage, codes.Internal},
		{"other", errors.New("hash failed"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newTestServer(&fakeAuth{redeemErr: tt.err}).UpdatePassword(ctx, req)
			if tt.code == codes.OK {
				require.NoError(t, err)
				assert.True(t, proto.Equal(&pb.UpdatePasswordResponse{Email: "a@x.com", Message: "Password updated"}, resp))
				return
			}
			assertCode(t, err, tt.code)
		})
	}

	_, err := newTestServer(&fakeAuth{}).UpdatePassword(ctx, &pb.UpdatePasswordRequest{ResetToken: "rt"})
	assertCode(t, err, codes.InvalidArgument)
}
