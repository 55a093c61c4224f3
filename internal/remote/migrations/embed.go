// Package migrations embeds the SQL migrations for the remote entry table.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
