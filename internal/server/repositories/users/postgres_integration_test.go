//go:build integration

package users

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("gophauth"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Postgres)
	require.NoError(t, goose.SetDialect("pgx"))
	require.NoError(t, goose.UpContext(ctx, db, "."))

	return db
}

func TestPostgresRepository_Contract(t *testing.T) {
	db := startPostgres(t)

	newRepo := func(t *testing.T) Repository {
		_, err := db.ExecContext(context.Background(), "TRUNCATE users")
		require.NoError(t, err)
		return NewPostgresRepository(db)
	}

	t.Run("insert and find", func(t *testing.T) { testInsertAndFind(t, newRepo(t)) })
	t.Run("duplicate email", func(t *testing.T) { testDuplicateEmail(t, newRepo(t)) })
	t.Run("update tri-state", func(t *testing.T) { testUpdate(t, newRepo(t)) })
	t.Run("compare and update", func(t *testing.T) { testCompareAndUpdate(t, newRepo(t)) })
	t.Run("concurrent insert", func(t *testing.T) { testConcurrentInsert(t, newRepo(t)) })
}
