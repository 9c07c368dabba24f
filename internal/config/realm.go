package config

import "fmt"

// Realm holds configuration for the realm simulation + netcode transport
// daemon (cmd/realm), adapted from la2go's GameServer config shape.
type Realm struct {
	// Network (netcode transport, spec §4.2 / §6)
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
	MaxClients  int    `yaml:"max_clients"`

	// ProtocolID must be non-zero in any deployment that isn't local dev
	// (spec §9 Open Question b). The connect-token handshake rejects any
	// token whose protocol_id disagrees with this value.
	ProtocolID uint64 `yaml:"protocol_id"`

	// MasterKeyB64 is the realm's 32-byte AEAD key, base64 encoded, used
	// to decrypt the connect token's private section (spec §4.3, §6).
	MasterKeyB64 string `yaml:"master_key"`

	// TickHz is the fixed simulation tick rate (spec §9 Open Question a).
	TickHz int `yaml:"tick_hz"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Rates (la2go Rates struct, narrowed to what the loot system uses).
	LootChanceMultiplier float64 `yaml:"loot_chance_multiplier"`
	LootAmountMultiplier float64 `yaml:"loot_amount_multiplier"`

	// Telemetry
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DefaultRealm returns sensible defaults, mirroring la2go's
// DefaultGameServer pattern of defaults-then-overlay.
func DefaultRealm() Realm {
	return Realm{
		BindAddress:           "0.0.0.0",
		Port:                  8900,
		MaxClients:            2000,
		ProtocolID:            0x454d4245524c3031, // "EMBEREAL01" truncated to 8 bytes
		TickHz:                30,
		LootChanceMultiplier:  1.0,
		LootAmountMultiplier:  1.0,
		Database:              defaultDatabase(),
		Telemetry:             defaultTelemetry("0.0.0.0:9100"),
	}
}

// LoadRealm loads layered realm configuration from dir (expects
// base.yaml plus an optional {local,staging,production}.yaml) and
// APP__ environment overrides.
func LoadRealm(dir, environment string) (Realm, error) {
	cfg := DefaultRealm()
	if err := loadLayered(dir, environment, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate enforces the invariants spec §9 calls out explicitly.
// ProtocolID==0 is intentionally accepted: spec §4.3/§8 use it as the
// documented dev/test value, even though §9 recommends every real
// deployment set a distinct non-zero id (DefaultRealm already does).
func (r Realm) Validate() error {
	if r.TickHz <= 0 {
		return fmt.Errorf("realm.tick_hz must be positive, got %d", r.TickHz)
	}
	if r.MasterKeyB64 == "" {
		return fmt.Errorf("realm.master_key is required")
	}
	return nil
}
