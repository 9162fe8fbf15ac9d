package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mugline/roster-cli/internal/store"
)

// openStore builds the run store from config and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite", "":
		s, err = store.NewSQLite(cfg.Store.Path)
	case "postgres":
		s, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// recordRun wraps a stage in run bookkeeping. Store failures are logged,
// never fatal: the pipeline's artifacts matter more than its ledger.
func recordRun(ctx context.Context, kind store.RunKind, detail any, fn func() (any, error)) error {
	s, err := openStore(ctx)
	if err != nil {
		zap.L().Warn("run store unavailable", zap.Error(err))
		_, runErr := fn()
		return runErr
	}
	defer func() { _ = s.Close() }()

	run, err := s.CreateRun(ctx, kind, detail)
	if err != nil {
		zap.L().Warn("create run failed", zap.Error(err))
		_, runErr := fn()
		return runErr
	}

	result, runErr := fn()
	if runErr != nil {
		if err := s.FailRun(context.WithoutCancel(ctx), run.ID, runErr); err != nil {
			zap.L().Warn("fail run update failed", zap.Error(err))
		}
		return runErr
	}
	if err := s.CompleteRun(ctx, run.ID, result); err != nil {
		zap.L().Warn("complete run update failed", zap.Error(err))
	}
	return nil
}
