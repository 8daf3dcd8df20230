package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

// spyRepo wraps a real repository, counts calls and can inject failures.
type spyRepo struct {
	users.Repository

	mu        sync.Mutex
	findCalls int

	findErr    error
	insertErr  error
	updateErr  error
	compareErr error
}

func (s *spyRepo) FindOne(ctx context.Context, l models.Lookup) (*models.User, error) {
	s.mu.Lock()
	s.findCalls++
	err := s.findErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Repository.FindOne(ctx, l)
}

func (s *spyRepo) Insert(ctx context.Context, email string, hash []byte) (*models.User, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	return s.Repository.Insert(ctx, email, hash)
}

func (s *spyRepo) Update(ctx context.Context, id string, upd models.UserUpdate) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.Repository.Update(ctx, id, upd)
}

func (s *spyRepo) CompareAndUpdate(ctx context.Context, id string, expect models.Lookup, upd models.UserUpdate) error {
	if s.compareErr != nil {
		return s.compareErr
	}
	return s.Repository.CompareAndUpdate(ctx, id, expect, upd)
}

func (s *spyRepo) finds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCalls
}

type eventLog struct {
	mu     sync.Mutex
	counts map[string]int
}

func (e *eventLog) AuthEvent(event string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.counts == nil {
		e.counts = map[string]int{}
	}
	e.counts[event]++
}

func (e *eventLog) count(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts[event]
}

type failingGenerator struct{}

func (failingGenerator) Generate() (string, error) { return "", errors.New("entropy exhausted") }

var errDB = fmt.Errorf("%w: db error: connection refused", common.ErrorStorage)

func newTestService(t *testing.T, opts Options) (*AuthService, *spyRepo, *eventLog) {
	t.Helper()
	repo := &spyRepo{Repository: users.NewInMemoryRepository()}
	events := &eventLog{}
	opts.Events = events
	svc := NewAuthService(repo, cryptox.NewBcryptHasher(bcrypt.MinCost), cryptox.NewTokenGenerator(0), logging.Nop(), opts)
	return svc, repo, events
}
