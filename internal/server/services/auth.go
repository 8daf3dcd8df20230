// Package services contains server-side business logic. This file implements
// AuthService: registration, credential checks, session issuance and
// revocation, and the password-reset flow.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// fallbackDummyHash is used only if hashing the startup dummy fails.
const fallbackDummyHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Options tune policy where the default behaviour is a deliberate trade-off.
type Options struct {
	// ConcealUnknownResetEmail makes RequestPasswordReset return ("", nil)
	// for an unknown email instead of ErrorUserNotFound.
	ConcealUnknownResetEmail bool

	// RevokeSessionOnReset clears the session in the same update that
	// redeems a reset token.
	RevokeSessionOnReset bool

	// Events receives auth events; nil discards them.
	Events EventRecorder
}

// AuthService owns the credential lifecycle of a user. Stored "not found"
// outcomes never leave it: they become either a negative result or a domain
// error. Storage failures are returned wrapped and match common.ErrorStorage.
type AuthService struct {
	users     users.Repository
	hasher    cryptox.PasswordHasher
	tokens    cryptox.IdentifierGenerator
	logger    logging.Logger
	opts      Options
	events    EventRecorder
	dummyHash []byte
}

// NewAuthService wires the service. A dummy hash is computed once with the
// configured hasher so that logins for unknown emails cost the same as a
// wrong password.
func NewAuthService(repo users.Repository, hasher cryptox.PasswordHasher, tokens cryptox.IdentifierGenerator, logger logging.Logger, opts Options) *AuthService {
	events := opts.Events
	if events == nil {
		events = nopRecorder{}
	}

	dummy, err := hasher.Hash("gophauth-dummy-password")
	if err != nil {
		dummy = []byte(fallbackDummyHash)
	}

	return &AuthService{
		users:     repo,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger.With("module", "services.auth"),
		opts:      opts,
		events:    events,
		dummyHash: dummy,
	}
}

// Register creates a user with both session and reset token unset. It fails
// with common.ErrorAlreadyExists if the email is taken, including when a
// concurrent registration wins the insert.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	_, err := s.users.FindOne(ctx, models.ByEmail(email))
	if err == nil {
		return nil, common.ErrorAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user, err := s.users.Insert(ctx, email, hash)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.events.AuthEvent(EventRegistered)
	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// ValidateLogin reports whether password matches the stored hash for email.
// Unknown email, wrong password and storage failure all yield false.
func (s *AuthService) ValidateLogin(ctx context.Context, email, password string) bool {
	user, err := s.users.FindOne(ctx, models.ByEmail(email))
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "login lookup failed", "error", err)
		}
		s.hasher.Verify(password, s.dummyHash)
		s.events.AuthEvent(EventLoginFailed)
		return false
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		s.events.AuthEvent(EventLoginFailed)
		return false
	}
	return true
}

// CreateSession mints a session id for email and stores it, replacing any
// previous session. It returns ok=false if the user does not exist. It does
// not check the password; callers must call ValidateLogin first.
func (s *AuthService) CreateSession(ctx context.Context, email string) (token string, ok bool, err error) {
	user, err := s.users.FindOne(ctx, models.ByEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("create session: %w", err)
	}

	token, err = s.tokens.Generate()
	if err != nil {
		return "", false, fmt.Errorf("create session: %w", err)
	}

	err = s.users.Update(ctx, user.ID, models.UserUpdate{SessionID: models.SetTo(token)})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("create session: %w", err)
	}

	s.events.AuthEvent(EventSessionCreated)
	s.logger.Info(ctx, "session created", "user_id", user.ID)
	return token, true, nil
}

// GetUserBySession resolves a session id to its user, or nil.
func (s *AuthService) GetUserBySession(ctx context.Context, token string) *models.User {
	if token == "" {
		return nil
	}

	user, err := s.users.FindOne(ctx, models.BySessionID(token))
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "session lookup failed", "error", err)
		}
		return nil
	}
	return user
}

// DestroySession clears the user's session. An empty id, a missing user or
// an already cleared session are no-ops.
func (s *AuthService) DestroySession(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}

	err := s.users.Update(ctx, userID, models.UserUpdate{SessionID: models.Clear()})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("destroy session: %w", err)
	}

	s.events.AuthEvent(EventSessionDestroyed)
	s.logger.Info(ctx, "session destroyed", "user_id", userID)
	return nil
}

// RequestPasswordReset mints a reset token for email, replacing any previous
// one. The current session is left alone.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindOne(ctx, models.ByEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			if s.opts.ConcealUnknownResetEmail {
				return "", nil
			}
			return "", common.ErrorUserNotFound
		}
		return "", fmt.Errorf("request password reset: %w", err)
	}

	token, err := s.tokens.Generate()
	if err != nil {
		return "", fmt.Errorf("request password reset: %w", err)
	}

	err = s.users.Update(ctx, user.ID, models.UserUpdate{ResetToken: models.SetTo(token)})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUserNotFound
		}
		return "", fmt.Errorf("request password reset: %w", err)
	}

	s.events.AuthEvent(EventResetRequested)
	s.logger.Info(ctx, "password reset requested", "user_id", user.ID)
	return token, nil
}

// RedeemPasswordReset sets a new password for the holder of token and clears
// the token in one conditional update, so a token can be redeemed once.
// It fails with common.ErrorInvalidToken for an unknown token and
// common.ErrorConflict if a concurrent redemption won.
func (s *AuthService) RedeemPasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return common.ErrorInvalidToken
	}

	user, err := s.users.FindOne(ctx, models.ByResetToken(token))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorInvalidToken
		}
		return fmt.Errorf("redeem password reset: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("redeem password reset: hash password: %w", err)
	}

	upd := models.UserUpdate{HashedPassword: hash, ResetToken: models.Clear()}
	if s.opts.RevokeSessionOnReset {
		upd.SessionID = models.Clear()
	}

	err = s.users.CompareAndUpdate(ctx, user.ID, models.ByResetToken(token), upd)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return common.ErrorConflict
		}
		return fmt.Errorf("redeem password reset: %w", err)
	}

	s.events.AuthEvent(EventPasswordReset)
	s.logger.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}
