// Package pgmigrations embeds the SQL migrations for the Postgres container
// store.
package pgmigrations

import "embed"

// FS holds the migration files, applied by platform/postgres at startup.
//
//go:embed *.sql
var FS embed.FS
