// Package migrations embeds the goose SQL migration set for the
// accounts/characters/guilds schema (spec §6).
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
