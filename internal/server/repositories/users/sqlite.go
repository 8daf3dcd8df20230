package users

import (
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository stores users in SQLite through modernc.org/sqlite.
type SQLiteRepository struct {
	sqlRepository
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{sqlRepository: newSQLRepository(db, dialect{
		placeholder:     func(int) string { return "?" },
		uniqueViolation: isSQLiteUniqueViolation,
	})}
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
