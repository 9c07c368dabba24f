// Command gateway runs the HTTP session-entry daemon: account/token
// issuance, character management, connect-token minting, and the
// /social WebSocket upgrade into the hub (spec §4.3, §4.5, §4.6).
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/embervale/realm/internal/config"
	"github.com/embervale/realm/internal/db"
	"github.com/embervale/realm/internal/gatewayhttp"
	"github.com/embervale/realm/internal/hub"
	"github.com/embervale/realm/internal/telemetry"
)

const ConfigDir = "configuration/gateway"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("gateway: shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("gateway: fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	dir := ConfigDir
	if p := os.Getenv("EMBERVALE_CONFIG_DIR"); p != "" {
		dir = p
	}
	cfg, err := config.LoadGateway(dir, "")
	if err != nil {
		return fmt.Errorf("loading gateway config: %w", err)
	}

	log := telemetry.InitLogger(cfg.Telemetry.LogLevel, cfg.Telemetry.LogFormat)
	log.Info("gateway: starting", "log_level", cfg.Telemetry.LogLevel, "log_format", cfg.Telemetry.LogFormat)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	signingKey, err := base64.StdEncoding.DecodeString(cfg.JWTSigningKeyB64)
	if err != nil {
		return fmt.Errorf("decoding gateway.jwt_signing_key: %w", err)
	}
	masterKey, err := base64.StdEncoding.DecodeString(cfg.MasterKeyB64)
	if err != nil {
		return fmt.Errorf("decoding gateway.master_key: %w", err)
	}

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	log.Info("gateway: database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("gateway: database migrations applied")

	accounts := db.NewAccountRepository(database.Pool())
	characters := db.NewCharacterRepository(database.Pool())
	guilds := db.NewGuildRepository(database.Pool())

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	defer rdb.Close()

	resolver, err := gatewayhttp.NewRealmResolver(cfg.RealmResolver)
	if err != nil {
		return fmt.Errorf("building realm resolver: %w", err)
	}

	hubInstance := hub.New(characters, log)

	deps := &gatewayhttp.Deps{
		Accounts:   accounts,
		Characters: characters,
		Guilds:     guilds,
		Issuer:     gatewayhttp.NewTokenIssuer(signingKey, cfg.JWTTokenTTL),
		Throttle:   gatewayhttp.NewLoginThrottle(rdb, cfg.LoginTryBeforeBan, time.Duration(cfg.LoginBlockAfterBan)*time.Second),
		Resolver:   resolver,
		Hub:        hubInstance,
		MasterKey:  masterKey,
		ProtocolID: cfg.ProtocolID,
		Log:        log,
	}

	addr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)
	server := gatewayhttp.NewServer(addr, deps)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hubInstance.Run(gctx)
		return nil
	})

	g.Go(func() error {
		return server.Run(gctx, log)
	})

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		return fmt.Errorf("gateway server error: %w", err)
	}
	return nil
}
