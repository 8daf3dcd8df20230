package users

import (
	"errors"
	"strconv"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository stores users in PostgreSQL through the pgx stdlib driver.
type PostgresRepository struct {
	sqlRepository
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{sqlRepository: newSQLRepository(db, dialect{
		placeholder:     func(n int) string { return "$" + strconv.Itoa(n) },
		uniqueViolation: isPgUniqueViolation,
	})}
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
