package handler

import (
	"net/http"
	"strconv"

	"medchain/internal/delivery/api/response"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/usecase"

	"github.com/labstack/echo/v4"
)

// OrderHandler serves hospital checkout and transporter shipping.
type OrderHandler struct {
	workflow usecase.WorkflowUsecase
	catalog  usecase.CatalogUsecase
}

// NewOrderHandler is the constructor for OrderHandler, injected by Fx.
func NewOrderHandler(workflow usecase.WorkflowUsecase, catalog usecase.CatalogUsecase) *OrderHandler {
	return &OrderHandler{workflow: workflow, catalog: catalog}
}

type cartLine struct {
	EquipmentID int64  `json:"equipmentId" validate:"gt=0"`
	Name        string `json:"name"`
	Quantity    int64  `json:"quantity"`
	Available   int64  `json:"available" validate:"gt=0"`
	Price       int64  `json:"price" validate:"gte=0"`
	Image       string `json:"image"`
}

type placeOrderRequest struct {
	Items []cartLine `json:"items" validate:"required,min=1,dive"`
}

type shipByQRRequest struct {
	QRData string `json:"qrData" validate:"required"`
}

// Place orders the cart.
func (h *OrderHandler) Place(c echo.Context) error {
	var req placeOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	items := make([]entity.CartItem, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, entity.CartItem{
			EquipmentID: line.EquipmentID,
			Name:        line.Name,
			Quantity:    line.Quantity,
			Available:   line.Available,
			Price:       line.Price,
			Image:       line.Image,
		})
	}

	confirmation, err := h.workflow.PlaceOrder(c.Request().Context(), session(c), usecase.PlaceOrderInput{Items: items})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, confirmation)
}

// QR renders the confirmation code of an order as PNG.
func (h *OrderHandler) QR(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || orderID < 0 {
		return domainerrors.Validation("invalid order id %q", c.Param("orderId"))
	}

	png, err := h.workflow.OrderQR(c.Request().Context(), session(c), orderID)
	if err != nil {
		return err
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// List returns every order.
func (h *OrderHandler) List(c echo.Context) error {
	orders, err := h.catalog.Orders(c.Request().Context())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, orders)
}

// Ship ships an order by backend id or order id.
func (h *OrderHandler) Ship(c echo.Context) error {
	result, err := h.workflow.ShipOrder(c.Request().Context(), session(c), c.Param("id"))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, result)
}

// ShipByQR ships the order of a scanned confirmation code.
func (h *OrderHandler) ShipByQR(c echo.Context) error {
	var req shipByQRRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.workflow.ShipOrderByQR(c.Request().Context(), session(c), req.QRData)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, result)
}
