// Package dbx provides tiny DB helpers shared by the SQL repositories: a
// minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx, and
// conversions between nullable columns and Go pointers.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RequireAffected returns miss when res reports zero affected rows.
// Drivers that cannot report the count yield a wrapped error.
func RequireAffected(res sql.Result, miss error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return miss
	}
	return nil
}

// StringPtr converts a scanned nullable string into a pointer (nil for NULL).
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// NullString is the inverse of StringPtr, suitable as a query argument.
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
