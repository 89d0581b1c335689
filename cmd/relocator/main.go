// relocator: warehouse stock relocation console
//
// An operator console for moving inventory between warehouse locations,
// by source location or by scanned item, with capacity and mixing checks
// and a short undo window.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tuanano/wms-web/internal/config"
	"github.com/tuanano/wms-web/internal/database"
	"github.com/tuanano/wms-web/internal/database/seed"
	"github.com/tuanano/wms-web/internal/models"
	"github.com/tuanano/wms-web/internal/repository"
	"github.com/tuanano/wms-web/internal/services/relocation"
	"github.com/tuanano/wms-web/internal/store"
	"github.com/tuanano/wms-web/internal/tui"
)

// Build information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse command line flags
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		migrateOnly = flag.Bool("migrate-only", false, "Run migrations and exit")
		seedData    = flag.Bool("seed", false, "Use a generated synthetic warehouse instead of the demo inventory")
		showVersion = flag.Bool("version", false, "Show version and exit")
		debugMode   = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("relocator version %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		slog.Info("received shutdown signal", "signal", sig)
		cancel()

		// Force exit after timeout
		time.AfterFunc(10*time.Second, func() {
			slog.Error("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	// Run the application
	if err := run(ctx, *configPath, *migrateOnly, *seedData, *debugMode); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, migrateOnly, seedData, debugMode bool) error {
	// Load configuration
	cfg, cfgPath, err := config.Load(configPath, true)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, closeLog, err := setupLogging(cfg, debugMode)
	if err != nil {
		return err
	}
	defer closeLog()

	logger.Info("relocator starting",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cfgPath,
	)

	// Pick the inventory the session starts from
	initial, err := initialSnapshot(cfg, seedData, logger)
	if err != nil {
		return err
	}

	var st store.Store
	if cfg.Database.InMemory() {
		if migrateOnly {
			logger.Info("no database configured, nothing to migrate")
			return nil
		}
		st = store.NewMemoryStore(initial)
	} else {
		sqlStore, closeDB, err := openSQLStore(ctx, cfg, initial, seedData, logger)
		if err != nil {
			return err
		}
		defer closeDB()

		if migrateOnly {
			logger.Info("migrations complete, exiting")
			return nil
		}
		st = sqlStore
	}

	svc := relocation.NewService(st, relocation.Options{
		PalletPrefix: cfg.Warehouse.PalletPrefix,
		ApplyLatency: cfg.Relocation.ApplyLatency(),
		Logger:       logger,
	})
	if err := svc.Load(ctx); err != nil {
		return err
	}

	// Set version info for TUI
	tui.Version = Version
	tui.BuildTime = BuildTime

	logger.Info("starting TUI",
		"warehouse", cfg.Warehouse.Name,
		"in_memory", cfg.Database.InMemory(),
	)

	if err := tui.Run(ctx, svc, cfg, logger); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("relocator shutdown complete")
	return nil
}

// setupLogging builds the process logger: JSON to the configured file, or
// text on stderr when no file is set.
func setupLogging(cfg *config.Config, debugMode bool) (*slog.Logger, func(), error) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case config.LogLevelDebug:
			logLevel = slog.LevelDebug
		case config.LogLevelWarn:
			logLevel = slog.LevelWarn
		case config.LogLevelError:
			logLevel = slog.LevelError
		}
	}

	logPath, err := config.EnsureLogDir(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	var logHandler slog.Handler
	closeLog := func() {}
	if logPath != "" {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		closeLog = func() { logFile.Close() }

		logHandler = slog.NewJSONHandler(logFile, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		logHandler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		})
	}

	logger := slog.New(logHandler)
	slog.SetDefault(logger)
	return logger, closeLog, nil
}

// initialSnapshot returns the synthetic warehouse for --seed, the configured
// snapshot file, or the demo inventory.
func initialSnapshot(cfg *config.Config, seedData bool, logger *slog.Logger) (*models.Snapshot, error) {
	switch {
	case seedData:
		logger.Info("generating synthetic warehouse")
		return seed.NewGenerator(seed.DefaultConfig()).Generate(), nil
	case cfg.Warehouse.SnapshotFile != "":
		snap, err := store.LoadSnapshotFile(cfg.Warehouse.SnapshotFile)
		if err != nil {
			return nil, fmt.Errorf("loading inventory snapshot: %w", err)
		}
		logger.Info("loaded inventory snapshot", "path", cfg.Warehouse.SnapshotFile)
		return snap, nil
	default:
		return seed.Demo(), nil
	}
}

// openSQLStore opens and migrates the database. An empty database, or any
// database when seedData is set, is filled with initial.
func openSQLStore(ctx context.Context, cfg *config.Config, initial *models.Snapshot, seedData bool, logger *slog.Logger) (*repository.SQLStore, func(), error) {
	dbPath, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("ensuring data directory: %w", err)
	}

	db, err := database.Open(&config.DatabaseConfig{Path: dbPath})
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	closeDB := func() {
		logger.Info("closing database")
		if err := db.Close(); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}

	version, err := database.Migrate(ctx, db)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	logger.Debug("database schema ready", "version", version, "path", db.Path())

	st := repository.NewSQLStore(db)
	empty, err := st.IsEmpty(ctx)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("checking inventory: %w", err)
	}
	if empty || seedData {
		if err := st.Import(ctx, initial); err != nil {
			closeDB()
			return nil, nil, err
		}
		logger.Info("imported inventory",
			"locations", len(initial.Locations),
			"units", len(initial.Units),
		)
	}

	return st, closeDB, nil
}
