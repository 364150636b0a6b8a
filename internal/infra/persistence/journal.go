// Package persistence selects where the reconciliation journal lives.
package persistence

import (
	"log/slog"

	"medchain/config"
	"medchain/internal/domain/repository"
	"medchain/internal/infra/persistence/memory"
	"medchain/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

// Params holds dependencies for the journal, injected by Fx
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// Result exposes the journal repositories to Fx
type Result struct {
	fx.Out

	TxManager repository.TransactionManager
	Orphans   repository.OrphanRepository
}

// NewJournal uses PostgreSQL when configured and process memory otherwise.
func NewJournal(params Params) (Result, error) {
	if params.Config.Postgres == nil {
		params.Logger.Warn("PostgreSQL not configured, reconciliation journal kept in memory")
		journal := memory.NewJournal()

		return Result{TxManager: journal, Orphans: journal.Repository()}, nil
	}

	db, err := postgres.New(postgres.Params{
		Lifecycle: params.Lifecycle,
		Config:    params.Config,
		Logger:    params.Logger,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		TxManager: postgres.NewTransactionManager(db),
		Orphans:   postgres.NewOrphanRepository(db),
	}, nil
}

// Module provides the journal FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewJournal),
)
