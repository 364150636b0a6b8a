package main

import (
	"context"
	"log/slog"
	"os"

	"medchain/config"
	"medchain/internal/delivery"
	"medchain/internal/delivery/api"
	"medchain/internal/delivery/api/middleware"
	"medchain/internal/delivery/api/router/handler"
	"medchain/internal/domain/service"
	"medchain/internal/infra/backend"
	"medchain/internal/infra/blob"
	"medchain/internal/infra/ledger"
	logs "medchain/internal/infra/log"
	"medchain/internal/infra/persistence"
	"medchain/internal/infra/prediction"
	"medchain/internal/infra/pubsub"
	"medchain/internal/infra/qrcode"
	"medchain/internal/infra/wallet"
	"medchain/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
		),
		ledger.Module,
		persistence.Module,
		pubsub.Module,
		qrcode.Module,
		blob.Module,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			wallet.New,
			prediction.New,
			fx.Annotate(
				backend.New,
				fx.As(new(service.MetadataRecorder)),
				fx.As(new(service.UserDirectory)),
			),
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewCoordinator,
			impl.NewCatalogService,
			impl.NewSessionService,
			impl.NewPredictionService,
			impl.NewReconcileService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewSessionMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewSessionHandler,
			handler.NewMaterialHandler,
			handler.NewEquipmentHandler,
			handler.NewOrderHandler,
			handler.NewPredictionHandler,
			handler.NewReconcileHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
