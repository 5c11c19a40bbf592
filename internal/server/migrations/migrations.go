// Package migrations embeds the goose SQL migrations for the capstone schema.
// The statements stay within the subset understood by both PostgreSQL and
// SQLite.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
