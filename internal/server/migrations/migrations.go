// Package migrations embeds the goose SQL migrations that define the
// DeckVault schema. They are applied at startup by the repository manager.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
