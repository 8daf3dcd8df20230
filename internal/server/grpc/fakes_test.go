package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// ---- fakes ----

type fakeAuth struct {
	regErr error

	loginOK bool

	sessionToken string
	sessionOK    bool
	sessionErr   error

	sessionUsers map[string]*models.User

	destroyErr   error
	destroyedFor string

	resetToken string
	resetErr   error

	redeemErr error
}

func (f *fakeAuth) Register(ctx context.Context, email, password string) (*models.User, error) {
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.User{ID: "u-1", Email: email}, nil
}

func (f *fakeAuth) ValidateLogin(ctx context.Context, email, password string) bool {
	return f.loginOK
}

func (f *fakeAuth) CreateSession(ctx context.Context, email string) (string, bool, error) {
	return f.sessionToken, f.sessionOK, f.sessionErr
}

func (f *fakeAuth) GetUserBySession(ctx context.Context, token string) *models.User {
	if token == "" {
		return nil
	}
	return f.sessionUsers[token]
}

func (f *fakeAuth) DestroySession(ctx context.Context, userID string) error {
	f.destroyedFor = userID
	return f.destroyErr
}

func (f *fakeAuth) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return f.resetToken, f.resetErr
}

func (f *fakeAuth) RedeemPasswordReset(ctx context.Context, token, newPassword string) error {
	return f.redeemErr
}
