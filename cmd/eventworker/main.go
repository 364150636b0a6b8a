// Command eventworker receives workflow events pushed by Pub/Sub and reports
// failed workflows that left ledger transactions in the reconciliation journal.
package main

import (
	"context"
	"log/slog"
	"os"

	"medchain/config"
	"medchain/internal/delivery"
	"medchain/internal/delivery/worker"
	"medchain/internal/delivery/worker/handler"
	logs "medchain/internal/infra/log"
	"medchain/internal/infra/persistence"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
		),
		persistence.Module,
		fx.Provide(
			handler.NewPushHandler,
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start worker", slog.Any("error", err))
				if shutdownErr := params.Shutdown(fx.ExitCode(1)); shutdownErr != nil {
					os.Exit(1)
				}
			}
		}()
	}
}
