// Package migrations embeds the artifact cache schema.
package migrations

import "embed"

// FS holds the SQL migration files applied when the cache is opened.
//
//go:embed *.sql
var FS embed.FS
