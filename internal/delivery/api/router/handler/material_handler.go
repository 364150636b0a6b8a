package handler

import (
	"net/http"

	"medchain/internal/delivery/api/response"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/usecase"

	"github.com/labstack/echo/v4"
)

// MaterialHandler serves raw material lots and the requests made against them.
type MaterialHandler struct {
	workflow usecase.WorkflowUsecase
	catalog  usecase.CatalogUsecase
}

// NewMaterialHandler is the constructor for MaterialHandler, injected by Fx.
func NewMaterialHandler(workflow usecase.WorkflowUsecase, catalog usecase.CatalogUsecase) *MaterialHandler {
	return &MaterialHandler{workflow: workflow, catalog: catalog}
}

type createRawMaterialRequest struct {
	Name     string `form:"name" json:"name" validate:"required"`
	Quantity int64  `form:"quantity" json:"quantity" validate:"gt=0"`
	Price    int64  `form:"price" json:"price" validate:"gt=0"`
	Category string `form:"category" json:"category" validate:"required"`
}

type requestRawMaterialRequest struct {
	RawID    int64 `json:"rawId" validate:"gt=0"`
	Quantity int64 `json:"quantity"`
}

// Available lists every lot with supplier names.
func (h *MaterialHandler) Available(c echo.Context) error {
	lots, err := h.catalog.AvailableRawMaterials(c.Request().Context())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, lots)
}

// Own lists the lots of the connected supplier.
func (h *MaterialHandler) Own(c echo.Context) error {
	lots, err := h.catalog.SupplierRawMaterials(c.Request().Context(), session(c))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, lots)
}

// Create registers a lot from a multipart form with its image.
func (h *MaterialHandler) Create(c echo.Context) error {
	var req createRawMaterialRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	image, err := formImage(c, "image")
	if err != nil {
		return err
	}

	result, err := h.workflow.CreateRawMaterial(c.Request().Context(), session(c), usecase.CreateRawMaterialInput{
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    req.Price,
		Category: req.Category,
		Image:    image,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, result)
}

// Inbox lists requests addressed to the connected supplier.
func (h *MaterialHandler) Inbox(c echo.Context) error {
	requests, err := h.catalog.SupplierRequests(c.Request().Context(), session(c))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, requests)
}

// Approve approves a pending request.
func (h *MaterialHandler) Approve(c echo.Context) error {
	return h.decide(c, true)
}

// Cancel cancels a pending request.
func (h *MaterialHandler) Cancel(c echo.Context) error {
	return h.decide(c, false)
}

func (h *MaterialHandler) decide(c echo.Context, approve bool) error {
	id := c.Param("id")
	if id == "" {
		return domainerrors.Validation("request id is required")
	}

	result, err := h.workflow.ApproveOrCancelRequest(c.Request().Context(), session(c), usecase.DecideRequestInput{
		RequestID: id,
		Approve:   approve,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, result)
}

// Request asks a supplier lot for units. The quantity is clamped to the lot.
func (h *MaterialHandler) Request(c echo.Context) error {
	var req requestRawMaterialRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.workflow.RequestRawMaterial(c.Request().Context(), session(c), usecase.RequestRawMaterialInput{
		RawID:    req.RawID,
		Quantity: req.Quantity,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, result)
}

// Approved lists the approved requests of the connected manufacturer.
func (h *MaterialHandler) Approved(c echo.Context) error {
	requests, err := h.catalog.ApprovedRequests(c.Request().Context(), session(c))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, requests)
}
