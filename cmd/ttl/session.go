package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sidosera/ttl/internal/catalog"
	"github.com/sidosera/ttl/internal/config"
	"github.com/sidosera/ttl/internal/executor"
	"github.com/sidosera/ttl/internal/history"
	"github.com/sidosera/ttl/internal/logging"
	"github.com/sidosera/ttl/internal/repl"
	"github.com/sidosera/ttl/internal/source"
)

// session is everything one invocation needs: config, logger, executors
// and the engine over them.
type session struct {
	cfg     config.Config
	logger  *slog.Logger
	catalog *catalog.Executor
	sources []*source.Executor
	runtime *executor.Runtime
	engine  *repl.Engine
	history *history.History

	logCloser io.Closer
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger, closer, err := logging.Open(cfg.Log.File, level)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, logCloser: closer}

	s.catalog, err = catalog.New(ctx, catalog.WithLogger(logger))
	if err != nil {
		s.Close()
		return nil, err
	}

	cfgs := make([]source.Config, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		cfgs = append(cfgs, source.Config{Name: sc.Name, Driver: sc.Driver, DSN: sc.DSN})
	}
	s.sources, err = source.OpenAll(ctx, cfgs, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	execs := []executor.Executor{s.catalog}
	for _, src := range s.sources {
		execs = append(execs, src)
	}
	s.runtime, err = executor.NewRuntime(execs...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.engine = repl.New(s.runtime,
		repl.WithLogger(logger),
		repl.WithMacroPrefix(cfg.Repl.MacroPrefix),
		repl.WithPreviewRows(cfg.Repl.PreviewRows),
	)
	s.history = history.New(s.catalog)
	logger.Info("session ready", "schemas", s.runtime.Schemas())
	return s, nil
}

// Close tears down sources, the catalog and the log file, in that order.
func (s *session) Close() error {
	var errs []error
	for _, src := range s.sources {
		errs = append(errs, src.Close())
	}
	if s.catalog != nil {
		errs = append(errs, s.catalog.Close())
	}
	if s.logCloser != nil {
		errs = append(errs, s.logCloser.Close())
	}
	return errors.Join(errs...)
}
