// Package client is a thin gRPC client for the gophauth AuthService used by
// the authctl command line tool.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflict      = errors.New("conflict")
)

// Client wraps the generated AuthService stub and translates gRPC
// status codes into the package errors above.
type Client struct {
	conn *grpc.ClientConn
	api  pb.AuthServiceClient
}

// New dials addr without transport security. Extra dial options are appended
// after the defaults.
func New(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn, api: pb.NewAuthServiceClient(conn)}, nil
}

// NewWithAPI builds a Client over an existing stub. Close is a no-op for it.
func NewWithAPI(api pb.AuthServiceClient) *Client {
	return &Client{api: api}
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// WithSession attaches the session id to the outgoing request metadata,
// replacing any value already present.
func WithSession(ctx context.Context, sessionID string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.SessionMetadataKey, sessionID)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	resp, err := c.api.Register(ctx, &pb.RegisterRequest{Email: email, Password: password})
	if err != nil {
		return "", mapError(err)
	}
	return resp.GetMessage(), nil
}

// Login returns the new session id and the server greeting.
func (c *Client) Login(ctx context.Context, email, password string) (string, string, error) {
	resp, err := c.api.Login(ctx, &pb.LoginRequest{Email: email, Password: password})
	if err != nil {
		return "", "", mapError(err)
	}
	return resp.GetSessionId(), resp.GetMessage(), nil
}

func (c *Client) Logout(ctx context.Context, sessionID string) (string, error) {
	resp, err := c.api.Logout(WithSession(ctx, sessionID), &pb.LogoutRequest{})
	if err != nil {
		return "", mapError(err)
	}
	return resp.GetMessage(), nil
}

// Profile returns the email of the user owning sessionID.
func (c *Client) Profile(ctx context.Context, sessionID string) (string, error) {
	resp, err := c.api.Profile(WithSession(ctx, sessionID), &pb.ProfileRequest{})
	if err != nil {
		return "", mapError(err)
	}
	return resp.GetEmail(), nil
}

// ResetToken asks the server to issue a password reset token for email.
func (c *Client) ResetToken(ctx context.Context, email string) (string, error) {
	resp, err := c.api.GetResetPasswordToken(ctx, &pb.ResetPasswordTokenRequest{Email: email})
	if err != nil {
		return "", mapError(err)
	}
	return resp.GetResetToken(), nil
}

func (c *Client) UpdatePassword(ctx context.Context, email, resetToken, newPassword string) (string, error) {
	resp, err := c.api.UpdatePassword(ctx, &pb.UpdatePasswordRequest{
		Email:       email,
		ResetToken:  resetToken,
		NewPassword: newPassword,
	})
	if err != nil {
		return "", mapError(err)
	}
	return resp.GetMessage(), nil
}

func mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var kind error
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		kind = ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		kind = ErrUnavailable
	case codes.AlreadyExists:
		kind = ErrAlreadyExists
	case codes.NotFound:
		kind = ErrNotFound
	case codes.InvalidArgument:
		kind = ErrInvalidInput
	case codes.Aborted:
		kind = ErrConflict
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
	return fmt.Errorf("%w: %s", kind, st.Message())
}
