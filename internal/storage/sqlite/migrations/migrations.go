// Package migrations embeds the schema of the sqlite key-value tier.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
