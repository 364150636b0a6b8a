package service

import (
	"context"

	"medchain/internal/domain/entity"
)

// PredictionClient queries the demand inference endpoints, one name per call.
type PredictionClient interface {
	EquipmentDemand(ctx context.Context, hospitalEmail, equipmentName string, date entity.PredictionDate) (float64, error)
	RawMaterialDemand(ctx context.Context, supplierEmail, manufacturerEmail, materialName string, date entity.PredictionDate) (float64, error)
}
