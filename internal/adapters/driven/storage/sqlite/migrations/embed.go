// Package migrations holds the schema of the run history database.
// Files are applied in name order; NNN_name.up.sql is the forward script.
package migrations

import "embed"

// FS holds the .sql files.
//
//go:embed *.sql
var FS embed.FS
