package handler

import (
	"net/http"

	"medchain/internal/delivery/api/response"
	"medchain/internal/domain/entity"
	"medchain/internal/usecase"

	"github.com/labstack/echo/v4"
)

// PredictionHandler serves the demand predictions.
type PredictionHandler struct {
	uc usecase.PredictionUsecase
}

// NewPredictionHandler is the constructor for PredictionHandler, injected by Fx.
func NewPredictionHandler(uc usecase.PredictionUsecase) *PredictionHandler {
	return &PredictionHandler{uc: uc}
}

// Dates out of range are clamped, not rejected.
type predictionRequest struct {
	Email string `json:"email" validate:"required,email"`
	Day   int    `json:"day"`
	Month int    `json:"month"`
	Year  int    `json:"year"`
}

func (r predictionRequest) date() entity.PredictionDate {
	return entity.PredictionDate{Day: r.Day, Month: r.Month, Year: r.Year}
}

// Equipment predicts a hospital's demand per equipment name.
func (h *PredictionHandler) Equipment(c echo.Context) error {
	var req predictionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	predictions, err := h.uc.EquipmentDemand(c.Request().Context(), session(c), req.Email, req.date())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, predictions)
}

// RawMaterials predicts a manufacturer's demand per raw material name.
func (h *PredictionHandler) RawMaterials(c echo.Context) error {
	var req predictionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	predictions, err := h.uc.RawMaterialDemand(c.Request().Context(), session(c), req.Email, req.date())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, predictions)
}
