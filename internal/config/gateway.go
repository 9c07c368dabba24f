package config

import (
	"fmt"
	"time"
)

// RealmEntry is a statically configured realm the gateway can resolve a
// connect-token server address for (the "Local" RealmResolver mode).
type RealmEntry struct {
	ID      string `yaml:"id"`
	Address string `yaml:"address"`
}

// RealmResolverConfig selects between the Local (static list) and
// Kubernetes (Agones-like CRD label selector) resolver modes (spec
// §4.3).
type RealmResolverConfig struct {
	Mode       string       `yaml:"mode"` // "local" or "kubernetes"
	Realms     []RealmEntry `yaml:"realms"`
	Namespace  string       `yaml:"namespace"`
	APIServer  string       `yaml:"api_server"`
}

// RedisConfig configures the login-throttling store (SPEC_FULL.md
// supplemented feature 4).
type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

// Gateway holds configuration for the HTTP session-entry daemon
// (cmd/gateway), adapted from la2go's LoginServer config shape.
type Gateway struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// ProtocolID is stamped into every connect token this gateway mints
	// and must match the target realm's own protocol_id (spec §4.3, §9
	// Open Question b) or the realm's handshake will reject the token.
	ProtocolID uint64 `yaml:"protocol_id"`

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`

	// JWTSigningKeyB64 signs HS256 account/character JWTs (spec §4.5).
	JWTSigningKeyB64 string        `yaml:"jwt_signing_key"`
	JWTTokenTTL      time.Duration `yaml:"jwt_token_ttl"`

	// MasterKeyB64 must match the target realm's master key so minted
	// connect tokens decrypt there (spec §4.3).
	MasterKeyB64 string `yaml:"master_key"`

	RealmResolver RealmResolverConfig `yaml:"realm_resolver"`

	// Flood protection (la2go LoginServer config, carried as-is).
	FloodProtection    bool `yaml:"flood_protection"`
	MaxConnectionPerIP int  `yaml:"max_connection_per_ip"`
	LoginTryBeforeBan  int  `yaml:"login_try_before_ban"`
	LoginBlockAfterBan int  `yaml:"login_block_after_ban"` // seconds

	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DefaultGateway returns sensible defaults.
func DefaultGateway() Gateway {
	return Gateway{
		BindAddress:        "0.0.0.0",
		Port:               8080,
		ProtocolID:         0x454d4245524c3031, // "EMBEREAL01" truncated to 8 bytes, must match realm.protocol_id
		Database:           defaultDatabase(),
		Redis:              RedisConfig{Addr: "127.0.0.1:6379"},
		JWTTokenTTL:        15 * time.Minute,
		FloodProtection:    true,
		MaxConnectionPerIP: 50,
		LoginTryBeforeBan:  5,
		LoginBlockAfterBan: 900,
		RealmResolver: RealmResolverConfig{
			Mode: "local",
			Realms: []RealmEntry{
				{ID: "default", Address: "127.0.0.1:8900"},
			},
		},
		Telemetry: defaultTelemetry("0.0.0.0:9101"),
	}
}

// LoadGateway loads layered gateway configuration.
func LoadGateway(dir, environment string) (Gateway, error) {
	cfg := DefaultGateway()
	if err := loadLayered(dir, environment, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate enforces required fields before the gateway binds a socket.
func (g Gateway) Validate() error {
	if g.JWTSigningKeyB64 == "" {
		return fmt.Errorf("gateway.jwt_signing_key is required")
	}
	if g.MasterKeyB64 == "" {
		return fmt.Errorf("gateway.master_key is required")
	}
	switch g.RealmResolver.Mode {
	case "local", "kubernetes":
	default:
		return fmt.Errorf("gateway.realm_resolver.mode must be \"local\" or \"kubernetes\", got %q", g.RealmResolver.Mode)
	}
	return nil
}
