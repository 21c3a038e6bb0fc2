// Package migrations embeds the goose SQL migrations of the Resource API.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
