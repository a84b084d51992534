// Package database embeds the SQL migrations for each supported driver.
package database

import "embed"

// FS holds migrations/sqlite and migrations/postgres.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var FS embed.FS
