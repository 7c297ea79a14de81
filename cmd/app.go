package cmd

import (
	"context"
	"fmt"

	"dict-manager/core/config"
	"dict-manager/core/database"
	"dict-manager/core/logger"
	"dict-manager/core/reconcile"
	"dict-manager/core/storage"
	"dict-manager/feature/csvsync"
	"dict-manager/feature/datasync"
	"dict-manager/feature/dictionary"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// app bundles the services every command builds from the configuration.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      *dictionary.Store
	dictionary *dictionary.Service
	csv        *csvsync.Service
	sync       *datasync.Service
}

// bootstrap loads the configuration, opens the store and wires the services.
// The engine snapshot is taken here, so it reflects the store at startup
// unless opts pick another baseline.
func bootstrap(ctx context.Context, opts ...reconcile.EngineOption) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Server.IsValidMode() {
		return nil, fmt.Errorf("invalid server mode: %q", cfg.Server.Mode)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logg = logg.With(zap.String("mode", cfg.Server.Mode))

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	store := dictionary.NewStore(db)
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	suggester, err := dictionary.NewReadingSuggester()
	if err != nil {
		logg.Warn("Reading suggestions unavailable", zap.Error(err))
	}

	fs := afero.NewOsFs()
	codec := csvsync.NewCodec(store, fs, logg)

	var (
		exporter    csvsync.Exporter = codec
		engineCodec reconcile.Codec  = codec
	)
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		mirror := csvsync.NewMirror(codec, client, cfg.Storage, logg)
		exporter, engineCodec = mirror, mirror
		logg.Info("Object storage mirror enabled",
			zap.String("endpoint", cfg.Storage.Endpoint),
			zap.String("bucket", cfg.Storage.Bucket),
		)
	}

	engine := reconcile.NewEngine(ctx, store, engineCodec, fs, cfg.Sync.CSVDir, logg, opts...)

	return &app{
		cfg:        cfg,
		logger:     logg,
		store:      store,
		dictionary: dictionary.NewService(store, suggester, logg),
		csv:        csvsync.NewService(codec, exporter, cfg.Sync.CSVDir, cfg.Sync.ExportDir, logg),
		sync:       datasync.NewService(engine, cfg.Sync, logg),
	}, nil
}

// close releases the database connection and flushes the logger.
func (a *app) close() {
	if sqlDB, err := a.store.DB().DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}
