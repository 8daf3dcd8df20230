package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository keeps users in process memory. Returned users are
// copies; callers never alias stored state.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryRepository) FindOne(ctx context.Context, lookup models.Lookup) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, dbError(err)
	}
	if lookup.Empty() {
		return nil, common.ErrorNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if lookup.Field == models.LookupEmail {
		id, ok := r.byEmail[lookup.Value]
		if !ok {
			return nil, common.ErrorNotFound
		}
		return r.byID[id].Clone(), nil
	}

	for _, u := range r.byID {
		if lookup.Matches(u) {
			return u.Clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) Insert(ctx context.Context, email string, hashedPassword []byte) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, dbError(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: append([]byte(nil), hashedPassword...),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.byID[u.ID] = u
	r.byEmail[email] = u.ID
	return u.Clone(), nil
}

func (r *InMemoryRepository) Update(ctx context.Context, userID string, upd models.UserUpdate) error {
	if err := ctx.Err(); err != nil {
		return dbError(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	upd.Apply(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) CompareAndUpdate(ctx context.Context, userID string, expect models.Lookup, upd models.UserUpdate) error {
	if err := ctx.Err(); err != nil {
		return dbError(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok || !expect.Matches(u) {
		return common.ErrorConflict
	}
	upd.Apply(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}
