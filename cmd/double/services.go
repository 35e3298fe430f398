package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/tgienger/double/internal/config"
	"github.com/tgienger/double/internal/db"
	"github.com/tgienger/double/internal/engine"
	"github.com/tgienger/double/internal/logging"
	"github.com/tgienger/double/internal/store"
)

// loadConfig reads the config file and applies env and flag overrides
func loadConfig() (*config.Config, error) {
	if err := loadEnv(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if backend != "" {
		cfg.Storage.Backend = backend
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// services bundles the logger, the session store and the engine
type services struct {
	cfg     *config.Config
	log     zerolog.Logger
	engine  *engine.Engine
	closers []io.Closer
}

// newServices opens the configured store and restores the engine from it.
// Logs go to out unless the config names a file.
func newServices(ctx context.Context, cfg *config.Config, out io.Writer) (*services, error) {
	log, logCloser, err := logging.New(cfg.Logging, out)
	if err != nil {
		return nil, err
	}
	rt := &services{cfg: cfg, log: log, closers: []io.Closer{logCloser}}

	st, err := openStore(cfg.Storage, logging.Component(log, "store"))
	if err != nil {
		rt.closeAll()
		return nil, err
	}
	if c, ok := st.(io.Closer); ok {
		rt.closers = append(rt.closers, c)
	}

	rt.engine = engine.New(ctx, st, engine.Options{
		Logger:         &rt.log,
		ReminderOffset: cfg.Assistant.ReminderOffset,
		TaskDue:        cfg.Assistant.TaskDue,
	})
	return rt, nil
}

// sessionStore is an engine store that can also forget the session
type sessionStore interface {
	engine.Store
	Clear(ctx context.Context) error
}

// openStore opens the session store for the configured backend
func openStore(cfg config.StorageConfig, log zerolog.Logger) (sessionStore, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemory(), nil
	case config.BackendRedis:
		r, err := store.NewRedis(store.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		})
		if err != nil {
			return nil, fmt.Errorf("error connecting to redis: %w", err)
		}
		log.Debug().Str("addr", cfg.Redis.Addr).Msg("using redis store")
		return r, nil
	default:
		database, err := db.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("error initializing database: %w", err)
		}
		log.Debug().Str("path", cfg.Path).Msg("using sqlite store")
		return database, nil
	}
}

// Close persists the session and releases the store and log file
func (rt *services) Close(ctx context.Context) {
	rt.engine.Close(ctx)
	rt.closeAll()
}

func (rt *services) closeAll() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i].Close()
	}
}
