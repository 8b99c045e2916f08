// Package ddl holds the database schema migration files, embedded so a single
// binary can migrate its own schema.
package ddl

import "embed"

//go:embed *.sql
var Content embed.FS
