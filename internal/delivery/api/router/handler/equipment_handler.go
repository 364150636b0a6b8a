package handler

import (
	"net/http"

	"medchain/internal/delivery/api/response"
	"medchain/internal/usecase"

	"github.com/labstack/echo/v4"
)

// EquipmentHandler serves equipment creation, verification and listings.
type EquipmentHandler struct {
	workflow usecase.WorkflowUsecase
	catalog  usecase.CatalogUsecase
}

// NewEquipmentHandler is the constructor for EquipmentHandler, injected by Fx.
func NewEquipmentHandler(workflow usecase.WorkflowUsecase, catalog usecase.CatalogUsecase) *EquipmentHandler {
	return &EquipmentHandler{workflow: workflow, catalog: catalog}
}

type createEquipmentRequest struct {
	ApprovedRequestID string `form:"approvedRequestId" json:"approvedRequestId" validate:"required"`
	Name              string `form:"name" json:"name" validate:"required"`
	Price             int64  `form:"price" json:"price" validate:"gt=0"`
	Category          string `form:"category" json:"category" validate:"required"`
	Units             int64  `form:"units" json:"units" validate:"gt=0"`
}

// Create builds equipment from an approved request. The image is optional.
func (h *EquipmentHandler) Create(c echo.Context) error {
	var req createEquipmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	image, err := formImage(c, "image")
	if err != nil {
		return err
	}

	result, err := h.workflow.CreateEquipment(c.Request().Context(), session(c), usecase.CreateEquipmentInput{
		ApprovedRequestID: req.ApprovedRequestID,
		Name:              req.Name,
		Price:             req.Price,
		Category:          req.Category,
		Units:             req.Units,
		Image:             image,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, result)
}

// List returns every registered equipment.
func (h *EquipmentHandler) List(c echo.Context) error {
	equipment, err := h.catalog.Equipment(c.Request().Context())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, equipment)
}

// Verify marks equipment verified. The id is the backend id or the ledger equipment id.
func (h *EquipmentHandler) Verify(c echo.Context) error {
	result, err := h.workflow.VerifyEquipment(c.Request().Context(), session(c), c.Param("id"))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, result)
}

// Orderable lists equipment hospitals can order.
func (h *EquipmentHandler) Orderable(c echo.Context) error {
	equipment, err := h.catalog.OrderableEquipment(c.Request().Context())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, equipment)
}
