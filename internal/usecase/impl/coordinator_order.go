package impl

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"medchain/internal/domain/constants"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/service"
	"medchain/internal/errors"
	"medchain/internal/usecase"
)

// PlaceOrder orders every cart line on the ledger, then writes one order document.
// If any line fails nothing is written to the metadata store.
func (c *coordinator) PlaceOrder(ctx context.Context, session entity.Session, input usecase.PlaceOrderInput) (*usecase.OrderConfirmation, error) {
	r, err := c.begin(ctx, session, entity.ActionPlaceOrder)
	if err != nil {
		return nil, err
	}

	order, records, err := c.placeOrder(ctx, r, input)
	r.finish(ctx, err)
	if err != nil {
		return nil, err
	}

	result := r.result(firstRecord(records), r.reload(ctx, map[string]string{
		usecase.ViewOrders: constants.EndpointOrders,
	}))
	if id := result.Record.ID(); id != "" {
		order.ID = id
	}

	return &usecase.OrderConfirmation{WorkflowResult: *result, Order: *order}, nil
}

func (c *coordinator) placeOrder(ctx context.Context, r *run, input usecase.PlaceOrderInput) (*entity.Order, []entity.StoredRecord, error) {
	if !r.session.LoggedIn() {
		return nil, nil, domainerrors.ErrNotLoggedIn
	}
	if len(input.Items) == 0 {
		return nil, nil, domainerrors.Validation("cart is empty")
	}

	items := make([]entity.CartItem, len(input.Items))
	for i, item := range input.Items {
		if item.EquipmentID <= 0 {
			return nil, nil, domainerrors.Validation("cart line %d has no equipment id", i+1)
		}
		qty, err := entity.ClampQuantity(item.Quantity, item.Available)
		if err != nil {
			return nil, nil, err
		}
		item.Quantity = qty
		items[i] = item
	}

	orderID, err := c.newOrderID()
	if err != nil {
		return nil, nil, err
	}

	order := &entity.Order{
		OrderID: entity.Int64(orderID),
		User: entity.OrderUser{
			Name:          r.session.Profile.Name,
			Email:         r.session.Profile.Email,
			Contact:       r.session.Profile.Contact,
			UserAddress:   r.session.Profile.PhysicalAddress,
			WalletAddress: r.session.Identity.String(),
		},
		Items: make([]entity.OrderItem, 0, len(items)),
	}

	var total int64
	for _, item := range items {
		available, err := r.views.equipmentAvailable(ctx, item.EquipmentID)
		if err != nil {
			return nil, nil, r.abandon(ctx, err)
		}
		if !available {
			return nil, nil, r.abandon(ctx, domainerrors.Validation("equipment %d is not available for order", item.EquipmentID))
		}

		receipt, err := r.invoke(ctx, constants.MethodOrderEquipment, item.EquipmentID, item.Quantity)
		if err != nil {
			return nil, nil, r.abandon(ctx, err)
		}

		order.Items = append(order.Items, entity.OrderItem{
			EquipmentID: entity.Int64(item.EquipmentID),
			Name:        item.Name,
			Quantity:    entity.Int64(item.Quantity),
			Price:       entity.Int64(item.Price),
			Image:       item.Image,
			TxHash:      receipt.TxHash,
		})
		total += item.Price * item.Quantity
	}
	order.TotalPrice = entity.Int64(total)
	order.OrderDate = time.Now().UTC()

	payload, err := toPayload(order)
	if err != nil {
		return nil, nil, r.abandon(ctx, err)
	}

	records, err := r.record(ctx, entity.MetadataWrite{
		Method:   http.MethodPost,
		Endpoint: constants.EndpointOrders,
		Payload:  payload,
		TxHash:   r.wf.LastTxHash(),
	})
	if err != nil {
		return nil, nil, err
	}

	return order, records, nil
}

// ShipOrder marks an order shipped on the ledger and writes one transporter record per item.
func (c *coordinator) ShipOrder(ctx context.Context, session entity.Session, orderID string) (*usecase.WorkflowResult, error) {
	return c.shipOrder(ctx, session, orderID, nil)
}

// ShipOrderByQR ships the order named by a scanned confirmation code.
func (c *coordinator) ShipOrderByQR(ctx context.Context, session entity.Session, qrData string) (*usecase.WorkflowResult, error) {
	payload, err := c.qr.ParseOrderQR(qrData)
	if err != nil {
		return nil, err
	}

	return c.shipOrder(ctx, session, strconv.FormatInt(payload.OrderID, 10), payload)
}

func (c *coordinator) shipOrder(ctx context.Context, session entity.Session, orderID string, scanned *service.OrderQRPayload) (*usecase.WorkflowResult, error) {
	r, err := c.begin(ctx, session, entity.ActionShipOrder)
	if err != nil {
		return nil, err
	}

	records, err := c.ship(ctx, r, orderID, scanned)
	r.finish(ctx, err)
	if err != nil {
		return nil, err
	}

	// The last write is the shipped order itself.
	var record entity.StoredRecord
	if len(records) > 0 {
		record = records[len(records)-1]
	}

	return r.result(record, r.reload(ctx, map[string]string{
		usecase.ViewOrders: constants.EndpointOrders,
	})), nil
}

func (c *coordinator) ship(ctx context.Context, r *run, key string, scanned *service.OrderQRPayload) ([]entity.StoredRecord, error) {
	order, err := c.findOrder(ctx, key)
	if err != nil {
		return nil, err
	}
	if order.Shipped {
		return nil, domainerrors.Validation("order %d is already shipped", order.OrderID.Int64())
	}
	if scanned != nil && len(scanned.TxHashes) > 0 && !slices.Equal(scanned.TxHashes, order.TxHashes()) {
		return nil, domainerrors.ErrInvalidQRCode.WithDetails("transactions do not match order " + key)
	}
	if order.ID == "" {
		return nil, domainerrors.Validation("order %d has no backend id", order.OrderID.Int64())
	}

	transporterName := r.views.displayName(ctx, r.session.Identity)

	receipt, err := r.invoke(ctx, constants.MethodShipEquipment, order.OrderID.Int64())
	if err != nil {
		return nil, err
	}

	writes := make([]entity.MetadataWrite, 0, len(order.Items)+1)
	for _, item := range order.Items {
		payload, err := toPayload(entity.TransporterRecord{
			OrderID:           order.OrderID.Int64(),
			OrderDate:         order.OrderDate,
			TxHash:            receipt.TxHash,
			HospitalName:      order.User.Name,
			HospitalWallet:    order.User.WalletAddress,
			EquipmentID:       item.EquipmentID.Int64(),
			EquipmentName:     item.Name,
			TransporterName:   transporterName,
			TransporterWallet: r.session.Identity.String(),
		})
		if err != nil {
			return nil, r.abandon(ctx, err)
		}
		writes = append(writes, entity.MetadataWrite{
			Method:   http.MethodPost,
			Endpoint: constants.EndpointTransporterOrder,
			Payload:  payload,
			TxHash:   receipt.TxHash,
		})
	}
	writes = append(writes, entity.MetadataWrite{
		Method:   http.MethodPut,
		Endpoint: fmt.Sprintf(constants.EndpointOrderShip, order.ID),
		Payload:  map[string]any{"role": entity.RoleTransporter.String(), "txHash": receipt.TxHash},
		TxHash:   receipt.TxHash,
	})

	return r.record(ctx, writes...)
}

func (c *coordinator) findOrder(ctx context.Context, key string) (*entity.Order, error) {
	orders, err := queryAs[entity.Order](ctx, c.metadata, constants.EndpointOrders, nil)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if matchesKey(key, orders[i].ID, orders[i].OrderID.Int64()) {
			return &orders[i], nil
		}
	}

	return nil, domainerrors.ErrNotFound.WithDetails("order " + key)
}

// OrderQR renders the confirmation code of one of the session's own orders.
func (c *coordinator) OrderQR(ctx context.Context, session entity.Session, orderID int64) ([]byte, error) {
	if !session.Connected() {
		return nil, domainerrors.ErrWalletUnavailable
	}
	ledger, _ := c.wallet.LedgerHandle()
	if _, err := authorize(ctx, ledger, session, entity.ActionPlaceOrder); err != nil {
		return nil, err
	}

	order, err := c.findOrder(ctx, strconv.FormatInt(orderID, 10))
	if err != nil {
		return nil, err
	}
	if !session.Identity.Equal(order.User.WalletAddress) {
		return nil, domainerrors.ErrForbidden.WithDetails("order belongs to another wallet")
	}

	png, err := c.qr.GenerateOrderQR(service.OrderQRPayload{
		OrderID:  order.OrderID.Int64(),
		TxHashes: order.TxHashes(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "render order qr")
	}

	return png, nil
}
