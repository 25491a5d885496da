// Package migrations holds the plan store schema as numbered SQL scripts.
// NNN_name.up.sql files are applied in order; .down.sql files are kept for
// manual rollback.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
