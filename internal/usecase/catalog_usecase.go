package usecase

import (
	"context"

	"medchain/internal/domain/entity"
)

// CatalogUsecase serves the lists behind each dashboard
type CatalogUsecase interface {
	// AvailableRawMaterials lists every lot with its supplier's display name
	AvailableRawMaterials(ctx context.Context) ([]entity.RawMaterialLot, error)

	// SupplierRawMaterials lists the lots created by the session's supplier
	SupplierRawMaterials(ctx context.Context, session entity.Session) ([]entity.RawMaterialLot, error)

	// SupplierRequests lists requests addressed to the session's supplier
	SupplierRequests(ctx context.Context, session entity.Session) ([]entity.RawMaterialRequest, error)

	// ApprovedRequests lists the approved requests of the session's manufacturer
	ApprovedRequests(ctx context.Context, session entity.Session) ([]entity.RawMaterialRequest, error)

	// Equipment lists every registered equipment
	Equipment(ctx context.Context) ([]entity.Equipment, error)

	// OrderableEquipment lists verified and available equipment
	OrderableEquipment(ctx context.Context) ([]entity.Equipment, error)

	// Orders lists every order
	Orders(ctx context.Context) ([]entity.Order, error)
}
