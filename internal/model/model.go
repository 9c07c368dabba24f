// Package model holds the persistent row shapes shared between
// internal/db and the HTTP/realm layers that hydrate from them.
package model

import "time"

// Account is a row of the accounts table.
type Account struct {
	ID       int64
	Username string
	Email    string
	PassHash string
}

// Guild is a row of the guilds table.
type Guild struct {
	ID   int64
	Name string
}

// CharacterRow is a row of the characters table (spec §3 CharacterRow).
// It is mutated on disconnect with the entity's last known transform and
// otherwise only read by the realm on connect (spec §4.3).
type CharacterRow struct {
	ID        int64
	AccountID int64
	Name      string
	GuildID   *int64
	PositionX float32
	PositionY float32
	PositionZ float32
	Yaw       uint16
	Level     int32
	HP        int32
	MaxHP     int32
	CreatedAt time.Time
}
