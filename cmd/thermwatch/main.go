package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/probelab/thermwatch/internal/config"
	"github.com/probelab/thermwatch/internal/dashboard"
	"github.com/probelab/thermwatch/internal/event"
	"github.com/probelab/thermwatch/internal/forest"
	"github.com/probelab/thermwatch/internal/monitor"
	"github.com/probelab/thermwatch/internal/sensor"
	"github.com/probelab/thermwatch/internal/server"
	"github.com/probelab/thermwatch/internal/store"
	"github.com/probelab/thermwatch/internal/version"
	"github.com/probelab/thermwatch/internal/ws"
)

func main() {
	// Subcommand dispatch (before flag.Parse).
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Println(version.Info())
		return
	}

	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Load configuration (before logger, so log level/format can be configured).
	v, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("thermwatch starting", zap.String("version", version.Short()))

	if f := v.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Warn("no configuration file found, using defaults",
			zap.String("component", "config"),
		)
	}

	// Decode the typed config sections.
	monCfg := monitor.DefaultConfig()
	if err := v.UnmarshalKey("monitor", &monCfg); err != nil {
		logger.Fatal("invalid monitor configuration", zap.Error(err))
	}
	sensorCfg := sensor.DefaultConfig()
	if err := v.UnmarshalKey("sensor", &sensorCfg); err != nil {
		logger.Fatal("invalid sensor configuration", zap.Error(err))
	}
	forestCfg := forest.DefaultConfig()
	if err := v.UnmarshalKey("forest", &forestCfg); err != nil {
		logger.Fatal("invalid forest configuration", zap.Error(err))
	}
	var srvCfg server.Config
	if err := v.UnmarshalKey("server", &srvCfg); err != nil {
		logger.Fatal("invalid server configuration", zap.Error(err))
	}

	// Open the run journal database.
	dsn := v.GetString("database.dsn")
	db, err := store.Open(dsn)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.CheckVersion(ctx, version.Version); err != nil {
		logger.Fatal("schema version check failed", zap.Error(err))
	}
	if err := db.Migrate(ctx, "monitor", monitor.Migrations()); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database initialized",
		zap.String("component", "database"),
		zap.String("dsn", dsn),
	)

	bus := event.NewBus(logger.Named("event"))
	journal := monitor.NewJournal(db.DB())

	// Build the corpus and train the model; failures here are fatal before
	// the server ever binds.
	session, err := monitor.NewSession(monCfg, sensorCfg, forestCfg, journal, bus, logger.Named("monitor"))
	if err != nil {
		logger.Fatal("failed to create monitoring session", zap.Error(err))
	}

	monHandler := monitor.NewHandler(session, journal, logger.Named("monitor"))
	wsHandler := ws.NewHandler(session, bus, logger.Named("ws"))
	logger.Info("websocket handler initialized", zap.String("component", "ws"))

	addr := srvCfg.Addr()
	readyCheck := server.ReadinessChecker(func(ctx context.Context) error {
		return db.DB().PingContext(ctx)
	})
	srv := server.New(addr, logger.Named("server"), readyCheck, dashboard.Handler(), monHandler, wsHandler)

	// Start server in background.
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Drive the detection loop in the background; the API and dashboard keep
	// serving the final state after it finishes.
	sessionDone := make(chan error, 1)
	go func() {
		sessionDone <- session.Run(ctx)
	}()

	logger.Info("thermwatch ready", zap.String("addr", addr))
	fmt.Fprintf(os.Stderr, "\n  thermwatch %s is ready!\n  Open http://localhost:%d in your browser.\n\n", version.Short(), srvCfg.Port)

	// Wait for shutdown signal or a fatal loop error.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-sessionDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("detection loop failed", zap.Error(err))
			cancel()
			shutdown(srv, logger)
			os.Exit(1)
		}
		// Loop finished; keep serving until a signal arrives.
		sig := <-sigCh
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	cancel()
	shutdown(srv, logger)
	logger.Info("thermwatch stopped")
}

func shutdown(srv *server.Server, logger *zap.Logger) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
}
