// Package users implements storage of user records behind the Repository
// contract, with PostgreSQL, SQLite and in-memory backends.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository is the storage contract used by the auth service.
//
// FindOne returns common.ErrorNotFound on a miss, including for an empty
// lookup. Insert reports common.ErrorAlreadyExists when the email is taken.
// Update returns common.ErrorNotFound when no user has the id.
// CompareAndUpdate applies the update only while the row still matches
// expect and otherwise returns common.ErrorConflict. Every other failure is
// wrapped with common.ErrorStorage.
type Repository interface {
	FindOne(ctx context.Context, lookup models.Lookup) (*models.User, error)
	Insert(ctx context.Context, email string, hashedPassword []byte) (*models.User, error)
	Update(ctx context.Context, userID string, upd models.UserUpdate) error
	CompareAndUpdate(ctx context.Context, userID string, expect models.Lookup, upd models.UserUpdate) error
}
