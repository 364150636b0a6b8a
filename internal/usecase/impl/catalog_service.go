package impl

import (
	"context"
	"fmt"
	"log/slog"

	"medchain/internal/domain/constants"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/service"
	"medchain/internal/usecase"

	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

// maxNameLookups bounds concurrent display name requests per listing.
const maxNameLookups = 8

type catalogService struct {
	metadata service.MetadataRecorder
	names    *nameResolver
	logger   *slog.Logger
}

// CatalogParams holds dependencies for the catalog use case, injected by Fx
type CatalogParams struct {
	fx.In

	Metadata service.MetadataRecorder
	Users    service.UserDirectory
	Logger   *slog.Logger
}

// NewCatalogService creates the catalog use case
func NewCatalogService(params CatalogParams) usecase.CatalogUsecase {
	return &catalogService{
		metadata: params.Metadata,
		names:    newNameResolver(params.Users, params.Logger),
		logger:   params.Logger,
	}
}

func (s *catalogService) AvailableRawMaterials(ctx context.Context) ([]entity.RawMaterialLot, error) {
	lots, err := queryAs[entity.RawMaterialLot](ctx, s.metadata, constants.EndpointRaw, nil)
	if err != nil {
		return nil, err
	}

	wallets := make([]string, 0, len(lots))
	for _, lot := range lots {
		if lot.SupplierName == "" {
			wallets = append(wallets, lot.Supplier)
		}
	}
	names := s.resolveNames(ctx, wallets)
	for i := range lots {
		if lots[i].SupplierName == "" {
			lots[i].SupplierName = names[lots[i].Supplier]
		}
	}

	return lots, nil
}

func (s *catalogService) SupplierRawMaterials(ctx context.Context, session entity.Session) ([]entity.RawMaterialLot, error) {
	if !session.Connected() {
		return nil, domainerrors.ErrWalletUnavailable
	}

	lots, err := queryAs[entity.RawMaterialLot](ctx, s.metadata, constants.EndpointRaw, nil)
	if err != nil {
		return nil, err
	}

	own := make([]entity.RawMaterialLot, 0, len(lots))
	for _, lot := range lots {
		if session.Identity.Equal(lot.Supplier) {
			own = append(own, lot)
		}
	}

	return own, nil
}

func (s *catalogService) SupplierRequests(ctx context.Context, session entity.Session) ([]entity.RawMaterialRequest, error) {
	if !session.Connected() {
		return nil, domainerrors.ErrWalletUnavailable
	}

	requests, err := queryAs[entity.RawMaterialRequest](ctx, s.metadata, fmt.Sprintf(constants.EndpointSupplierRequests, session.Identity), nil)
	if err != nil {
		return nil, err
	}

	wallets := make([]string, 0, len(requests))
	for _, req := range requests {
		if req.ManufacturerName == "" {
			wallets = append(wallets, req.ManufacturerAddress)
		}
	}
	names := s.resolveNames(ctx, wallets)
	for i := range requests {
		if requests[i].ManufacturerName == "" {
			requests[i].ManufacturerName = names[requests[i].ManufacturerAddress]
		}
	}

	return requests, nil
}

func (s *catalogService) ApprovedRequests(ctx context.Context, session entity.Session) ([]entity.RawMaterialRequest, error) {
	if !session.Connected() {
		return nil, domainerrors.ErrWalletUnavailable
	}

	return queryAs[entity.RawMaterialRequest](ctx, s.metadata, fmt.Sprintf(constants.EndpointApprovedByManufacturer, session.Identity), nil)
}

func (s *catalogService) Equipment(ctx context.Context) ([]entity.Equipment, error) {
	return queryAs[entity.Equipment](ctx, s.metadata, constants.EndpointEquipment, nil)
}

func (s *catalogService) OrderableEquipment(ctx context.Context) ([]entity.Equipment, error) {
	verified, err := queryAs[entity.Equipment](ctx, s.metadata, constants.EndpointEquipmentVerified, nil)
	if err != nil {
		return nil, err
	}

	orderable := make([]entity.Equipment, 0, len(verified))
	for _, eq := range verified {
		if eq.Orderable() {
			orderable = append(orderable, eq)
		}
	}

	return orderable, nil
}

func (s *catalogService) Orders(ctx context.Context) ([]entity.Order, error) {
	return queryAs[entity.Order](ctx, s.metadata, constants.EndpointOrders, nil)
}

// resolveNames looks up each distinct wallet once. Unreadable names become "Unknown".
func (s *catalogService) resolveNames(ctx context.Context, wallets []string) map[string]string {
	names := make(map[string]string, len(wallets))
	for _, wallet := range wallets {
		names[wallet] = constants.UnknownName
	}
	if len(names) == 0 {
		return names
	}

	resolved := make([]string, 0, len(names))
	keys := make([]string, 0, len(names))
	for wallet := range names {
		keys = append(keys, wallet)
		resolved = append(resolved, "")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxNameLookups)
	for i, wallet := range keys {
		g.Go(func() error {
			resolved[i] = s.names.resolve(gctx, wallet, constants.UnknownName)

			return nil
		})
	}
	_ = g.Wait()

	for i, wallet := range keys {
		names[wallet] = resolved[i]
	}
	s.logger.Debug("Resolved display names", slog.Int("wallets", len(keys)))

	return names
}
