// Command realm runs the simulation core and its UDP netcode transport
// (spec §4.2-§4.4): one fixed-rate tick loop driving every ECS system,
// fed by a connectionless reliable/unreliable packet layer.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/embervale/realm/internal/config"
	"github.com/embervale/realm/internal/db"
	"github.com/embervale/realm/internal/netcode"
	"github.com/embervale/realm/internal/realm"
	"github.com/embervale/realm/internal/telemetry"
	"github.com/embervale/realm/internal/token"
	"github.com/embervale/realm/internal/wire"
)

const ConfigDir = "configuration/realm"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("realm: shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("realm: fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	dir := ConfigDir
	if p := os.Getenv("EMBERVALE_CONFIG_DIR"); p != "" {
		dir = p
	}
	cfg, err := config.LoadRealm(dir, "")
	if err != nil {
		return fmt.Errorf("loading realm config: %w", err)
	}

	log := telemetry.InitLogger(cfg.Telemetry.LogLevel, cfg.Telemetry.LogFormat)
	log.Info("realm: starting", "log_level", cfg.Telemetry.LogLevel, "log_format", cfg.Telemetry.LogFormat, "tick_hz", cfg.TickHz)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	masterKey, err := base64.StdEncoding.DecodeString(cfg.MasterKeyB64)
	if err != nil {
		return fmt.Errorf("decoding realm.master_key: %w", err)
	}

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	log.Info("realm: database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("realm: database migrations applied")

	characters := db.NewCharacterRepository(database.Pool())
	metrics := telemetry.NewMetrics()

	ownAddr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)
	pc, err := net.ListenPacket("udp", ownAddr)
	if err != nil {
		return fmt.Errorf("binding udp socket %s: %w", ownAddr, err)
	}
	defer pc.Close()

	netServer, err := netcode.NewServer(netcode.ServerConfig{
		ProtocolID: cfg.ProtocolID,
		MasterKey:  masterKey,
		OwnAddress: ownAddr,
		MaxClients: cfg.MaxClients,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("creating netcode server: %w", err)
	}

	loop := &tickLoop{
		cfg:        cfg,
		pc:         pc,
		netServer:  netServer,
		characters: characters,
		world:      realm.NewWorld(),
		rng:        newTickRNG(cfg),
		metrics:    metrics,
		log:        log,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("realm: udp transport listening", "addr", ownAddr)
		return loop.readLoop(gctx)
	})

	g.Go(func() error {
		log.Info("realm: simulation tick loop starting", "hz", cfg.TickHz)
		return loop.run(gctx)
	})

	g.Go(func() error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		srv := &http.Server{Addr: cfg.Telemetry.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		log.Info("realm: telemetry listening", "addr", cfg.Telemetry.MetricsAddr)

		errCh := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
		select {
		case <-gctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	})

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		return fmt.Errorf("realm server error: %w", err)
	}
	return nil
}

// hydrateConnect resolves a netcode.ConnectionEvent into a hydrated
// realm.ConnectEvent with a single DB read, done outside Tick since the
// simulation loop itself never blocks on I/O except the documented
// disconnect-persist exception (spec §4.4, §5).
func hydrateConnect(ctx context.Context, characters *db.CharacterRepository, ev netcode.ConnectionEvent, log *slog.Logger) (realm.ConnectEvent, bool) {
	characterID, _, err := token.DecodeUserData(ev.UserData)
	if err != nil {
		log.Warn("realm: malformed user_data on handshake completion", "client_id", ev.ClientID, "err", err)
		return realm.ConnectEvent{}, false
	}
	char, err := characters.LoadByID(ctx, int64(characterID))
	if err != nil {
		log.Error("realm: loading character on connect failed", "character_id", characterID, "err", err)
		return realm.ConnectEvent{}, false
	}
	if char == nil {
		log.Warn("realm: connect token referenced unknown character", "character_id", characterID)
		return realm.ConnectEvent{}, false
	}
	return realm.ConnectEvent{
		ClientID:    ev.ClientID,
		CharacterID: char.ID,
		AccountID:   char.AccountID,
		GuildID:     char.GuildID,
		Name:        char.Name,
		X:           char.PositionX,
		Y:           char.PositionY,
		Z:           char.PositionZ,
		Yaw:         char.Yaw,
		Level:       char.Level,
		HP:          char.HP,
		MaxHP:       char.MaxHP,
	}, true
}

// eventChannel picks the transport channel an outgoing event travels on:
// high-frequency movement goes unreliable, every other state transition
// goes reliable-ordered so clients never miss a spawn, death, or chat line.
func eventChannel(ev wire.Event) netcode.ChannelID {
	if _, ok := ev.(wire.EntityMoveEvent); ok {
		return netcode.ChannelUnreliable
	}
	return netcode.ChannelReliableOrdered
}
