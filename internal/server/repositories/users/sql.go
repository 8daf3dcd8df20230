package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

const selectColumns = `id, email, hashed_password, session_id, reset_token, created_at, updated_at`

// dialect captures what differs between SQL backends.
type dialect struct {
	placeholder     func(n int) string
	uniqueViolation func(err error) bool
}

// sqlRepository is shared by the PostgreSQL and SQLite repositories.
type sqlRepository struct {
	db      dbx.DBTX
	dialect dialect
	now     func() time.Time
	newID   func() string
}

func newSQLRepository(db dbx.DBTX, d dialect) sqlRepository {
	return sqlRepository{
		db:      db,
		dialect: d,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

func dbError(err error) error {
	return fmt.Errorf("%w: db error: %w", common.ErrorStorage, err)
}

func (r *sqlRepository) FindOne(ctx context.Context, lookup models.Lookup) (*models.User, error) {
	if lookup.Empty() {
		return nil, common.ErrorNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = %s LIMIT 1`,
		selectColumns, lookup.Column(), r.dialect.placeholder(1))

	var (
		user       models.User
		sessionID  sql.NullString
		resetToken sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, lookup.Value).Scan(
		&user.ID, &user.Email, &user.HashedPassword, &sessionID, &resetToken,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbError(err)
	}

	user.SessionID = dbx.StringPtr(sessionID)
	user.ResetToken = dbx.StringPtr(resetToken)
	return &user, nil
}

func (r *sqlRepository) Insert(ctx context.Context, email string, hashedPassword []byte) (*models.User, error) {
	p := r.dialect.placeholder
	query := fmt.Sprintf(
		`INSERT INTO users (id, email, hashed_password, created_at, updated_at) VALUES (%s, %s, %s, %s, %s)`,
		p(1), p(2), p(3), p(4), p(5))

	now := r.now()
	user := &models.User{
		ID:             r.newID(),
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := r.db.ExecContext(ctx, query, user.ID, email, hashedPassword, now, now); err != nil {
		if r.dialect.uniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, dbError(err)
	}
	return user, nil
}

// validID reports whether id can name a row at all. Ids are UUIDs and
// PostgreSQL rejects anything else with a cast error instead of matching
// nothing.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *sqlRepository) Update(ctx context.Context, userID string, upd models.UserUpdate) error {
	if !validID(userID) {
		return common.ErrorNotFound
	}
	query, args := r.buildUpdate(userID, models.Lookup{}, upd)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dbError(err)
	}
	if err := dbx.RequireAffected(res, common.ErrorNotFound); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return dbError(err)
	}
	return nil
}

func (r *sqlRepository) CompareAndUpdate(ctx context.Context, userID string, expect models.Lookup, upd models.UserUpdate) error {
	if expect.Empty() || !validID(userID) {
		return common.ErrorConflict
	}
	query, args := r.buildUpdate(userID, expect, upd)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dbError(err)
	}
	if err := dbx.RequireAffected(res, common.ErrorConflict); err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return err
		}
		return dbError(err)
	}
	return nil
}

// buildUpdate renders the SET list in a fixed column order followed by
// updated_at, then the id guard and the optional expect guard.
func (r *sqlRepository) buildUpdate(userID string, expect models.Lookup, upd models.UserUpdate) (string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = %s", column, r.dialect.placeholder(len(args))))
	}

	if upd.HashedPassword != nil {
		add("hashed_password", upd.HashedPassword)
	}
	if upd.SessionID.IsSet() {
		add("session_id", dbx.NullString(upd.SessionID.Value()))
	}
	if upd.ResetToken.IsSet() {
		add("reset_token", dbx.NullString(upd.ResetToken.Value()))
	}
	add("updated_at", r.now())

	args = append(args, userID)
	where := fmt.Sprintf("id = %s", r.dialect.placeholder(len(args)))
	if !expect.Empty() {
		args = append(args, expect.Value)
		where += fmt.Sprintf(" AND %s = %s", expect.Column(), r.dialect.placeholder(len(args)))
	}

	return fmt.Sprintf(`UPDATE users SET %s WHERE %s`, strings.Join(sets, ", "), where), args
}
