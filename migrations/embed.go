// Package migrations embeds the SQL migrations for the database mapping source.
package migrations

import "embed"

// FS holds the numbered .sql files in this directory.
//
//go:embed *.sql
var FS embed.FS
