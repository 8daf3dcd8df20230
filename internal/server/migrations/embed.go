// Package migrations embeds the goose SQL migrations for each supported
// dialect.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres and SQLite are rooted at their dialect directory so goose can be
// pointed at ".".
var (
	Postgres = mustSub("postgres")
	SQLite   = mustSub("sqlite")
)

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
