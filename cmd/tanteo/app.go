package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/tanteo/internal/config"
	"github.com/verte-zerg/tanteo/internal/logging"
	"github.com/verte-zerg/tanteo/internal/match"
	"github.com/verte-zerg/tanteo/internal/model"
	"github.com/verte-zerg/tanteo/internal/stats"
	"github.com/verte-zerg/tanteo/internal/store"
)

// settings is the effective configuration after flags and config file merge.
type settings struct {
	backend  string
	dbPath   string
	redisURL string
	logLevel string
	logFile  string
	window   time.Duration
	defaults model.Defaults
}

type app struct {
	engine   *match.Engine
	recorder *stats.Recorder
	window   time.Duration
	log      *zap.Logger
	closers  []func()
}

func resolveSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "backend", &backendName, fileCfg.Storage.Backend)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Storage.Path)
	applyStringConfig(cmd, "redis-url", &redisURL, fileCfg.Storage.RedisURL)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applySecondsConfig(cmd, "window", &historyWindow, fileCfg.History.Window)

	s := settings{
		backend:  backendName,
		dbPath:   dbPath,
		redisURL: redisURL,
		logLevel: logLevel,
		logFile:  logFile,
		window:   historyWindow,
		defaults: model.StandardDefaults(),
	}
	if fileCfg.Match.TeamA != nil {
		s.defaults.Names[0] = *fileCfg.Match.TeamA
	}
	if fileCfg.Match.TeamB != nil {
		s.defaults.Names[1] = *fileCfg.Match.TeamB
	}
	if fileCfg.Match.Target != nil {
		s.defaults.Target = *fileCfg.Match.Target
	}
	if s.backend != config.BackendSQLite && s.backend != config.BackendRedis {
		return settings{}, fmt.Errorf("--backend must be %q or %q", config.BackendSQLite, config.BackendRedis)
	}
	if s.window <= 0 {
		return settings{}, fmt.Errorf("--window must be > 0")
	}
	return s, nil
}

func openBackend(ctx context.Context, s settings) (store.Backend, error) {
	if s.backend == config.BackendRedis {
		rs, err := store.OpenRedis(ctx, s.redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis: %w", err)
		}
		return rs, nil
	}
	st, err := store.Open(s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

// openApp wires storage, statistics and the engine for a command.
func openApp(cmd *cobra.Command) (*app, error) {
	s, err := resolveSettings(cmd)
	if err != nil {
		return nil, err
	}
	log, syncLog, err := logging.New(s.logLevel, s.logFile)
	if err != nil {
		return nil, err
	}
	a := &app{window: s.window, log: log, closers: []func(){syncLog}}

	ctx := cmd.Context()
	backend, err := openBackend(ctx, s)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() {
		if cerr := backend.Close(); cerr != nil {
			logErrf("failed to close %s store: %v\n", s.backend, cerr)
		}
	})

	adapter := store.NewAdapter(backend, log.Named("store"))
	adapter.SetDefaults(s.defaults)
	a.recorder = stats.NewRecorder(adapter, log.Named("stats"))
	a.engine = match.New(ctx, adapter, a.recorder,
		match.WithLogger(log.Named("match")),
		match.WithDefaults(s.defaults),
	)
	log.Debug("app opened", zap.String("backend", s.backend), zap.Duration("window", s.window))
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
