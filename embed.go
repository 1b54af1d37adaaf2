package mshikotap

import "embed"

// MigrationsFS holds the SQL migrations applied at startup.
//
//go:embed migrations
var MigrationsFS embed.FS
