package migrations

import "embed"

// FS contains embedded SQLite migrations for the profile and airport tables.
//
//go:embed *.sql
var FS embed.FS
