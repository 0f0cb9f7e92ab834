// Package migrations embeds the SQL migrations of the local settings database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
