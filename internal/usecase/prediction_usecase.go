package usecase

import (
	"context"

	"medchain/internal/domain/entity"
)

// PredictionUsecase estimates demand for every known item name
type PredictionUsecase interface {
	// EquipmentDemand predicts, per equipment name, what a hospital will order on a date.
	// Run by a manufacturer.
	EquipmentDemand(ctx context.Context, session entity.Session, hospitalEmail string, date entity.PredictionDate) ([]entity.Prediction, error)

	// RawMaterialDemand predicts, per raw material name, what a manufacturer will request
	// from the session's supplier on a date.
	RawMaterialDemand(ctx context.Context, session entity.Session, manufacturerEmail string, date entity.PredictionDate) ([]entity.Prediction, error)
}
