package impl

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"medchain/internal/domain/constants"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/errors"
	"medchain/internal/usecase"
)

// CreateRawMaterial creates a lot on the ledger and mirrors it with its image.
func (c *coordinator) CreateRawMaterial(ctx context.Context, session entity.Session, input usecase.CreateRawMaterialInput) (*usecase.WorkflowResult, error) {
	r, err := c.begin(ctx, session, entity.ActionCreateRawMaterial)
	if err != nil {
		return nil, err
	}

	records, err := c.createRawMaterial(ctx, r, input)
	r.finish(ctx, err)
	if err != nil {
		return nil, err
	}

	reloaded := r.reload(ctx, map[string]string{usecase.ViewRawMaterials: constants.EndpointRaw})
	reloaded[usecase.ViewRawMaterials] = filterRecords(reloaded[usecase.ViewRawMaterials], func(lot entity.RawMaterialLot) bool {
		return session.Identity.Equal(lot.Supplier)
	})

	return r.result(firstRecord(records), reloaded), nil
}

func (c *coordinator) createRawMaterial(ctx context.Context, r *run, input usecase.CreateRawMaterialInput) ([]entity.StoredRecord, error) {
	name := strings.TrimSpace(input.Name)
	category := strings.TrimSpace(input.Category)
	switch {
	case name == "" || category == "":
		return nil, domainerrors.Validation("name and category are required")
	case input.Quantity <= 0 || input.Price <= 0:
		return nil, domainerrors.Validation("quantity and price must be greater than 0")
	case input.Image == nil || len(input.Image.Data) == 0:
		return nil, domainerrors.Validation("an image of the raw material is required")
	}

	supplier, err := r.views.isSupplier(ctx, r.session.Identity)
	if err != nil {
		return nil, err
	}
	if !supplier {
		return nil, domainerrors.Validation("account %s is not registered as a supplier", r.session.Identity)
	}

	receipt, err := r.invoke(ctx, constants.MethodCreateRawMaterial, name, input.Quantity, input.Price, category)
	if err != nil {
		return nil, err
	}

	rawID, ok := receipt.EventInt(constants.EventRawMaterialCreated, constants.EventFieldRawID)
	if !ok {
		// Without the event the newest lot id is the count.
		if rawID, err = r.views.rawMaterialCount(ctx); err != nil {
			return nil, r.abandon(ctx, errors.Wrap(err, "read raw material id"))
		}
	}

	return r.record(ctx, entity.MetadataWrite{
		Method:   http.MethodPost,
		Endpoint: constants.EndpointRaw,
		Payload: map[string]any{
			"name":     name,
			"quantity": input.Quantity,
			"price":    input.Price,
			"category": category,
			"supplier": r.session.Identity.String(),
			"rawId":    rawID,
			"txHash":   receipt.TxHash,
		},
		Image:  input.Image,
		TxHash: receipt.TxHash,
	})
}

// RequestRawMaterial requests units of a lot. The quantity is clamped to what the lot shows.
func (c *coordinator) RequestRawMaterial(ctx context.Context, session entity.Session, input usecase.RequestRawMaterialInput) (*usecase.WorkflowResult, error) {
	r, err := c.begin(ctx, session, entity.ActionRequestRawMaterial)
	if err != nil {
		return nil, err
	}

	records, err := c.requestRawMaterial(ctx, r, input)
	r.finish(ctx, err)
	if err != nil {
		return nil, err
	}

	return r.result(firstRecord(records), r.reload(ctx, map[string]string{
		usecase.ViewRawMaterials:     constants.EndpointRaw,
		usecase.ViewApprovedRequests: fmt.Sprintf(constants.EndpointApprovedByManufacturer, session.Identity),
	})), nil
}

func (c *coordinator) requestRawMaterial(ctx context.Context, r *run, input usecase.RequestRawMaterialInput) ([]entity.StoredRecord, error) {
	lots, err := queryAs[entity.RawMaterialLot](ctx, c.metadata, constants.EndpointRaw, nil)
	if err != nil {
		return nil, err
	}

	var lot *entity.RawMaterialLot
	for i := range lots {
		if lots[i].RawID.Int64() == input.RawID {
			lot = &lots[i]

			break
		}
	}
	if lot == nil {
		return nil, domainerrors.ErrNotFound.WithDetails(fmt.Sprintf("raw material %d", input.RawID))
	}

	quantity, err := entity.ClampQuantity(input.Quantity, lot.Quantity.Int64())
	if err != nil {
		return nil, err
	}
	supplierName := c.names.resolve(ctx, lot.Supplier, constants.UnknownName)

	receipt, err := r.invoke(ctx, constants.MethodRequestRawMaterial, input.RawID, quantity)
	if err != nil {
		return nil, err
	}

	contractRequestID, ok := receipt.EventInt(constants.EventRawMaterialRequested, constants.EventFieldRequestID)
	if !ok {
		return nil, r.abandon(ctx, errors.New("receipt has no RawMaterialRequested event"))
	}

	price := lot.Price.Int64()

	return r.record(ctx, entity.MetadataWrite{
		Method:   http.MethodPost,
		Endpoint: constants.EndpointRequestAdd,
		Payload: map[string]any{
			"rawId":               input.RawID,
			"contractRequestId":   contractRequestID,
			"manufacturerAddress": r.session.Identity.String(),
			"supplierId":          lot.Supplier,
			"supplierName":        supplierName,
			"name":                lot.Name,
			"quantity":            quantity,
			"price":               price,
			"totalPrice":          price * quantity,
			"status":              string(entity.RequestPending),
			"txHash":              receipt.TxHash,
			"image":               lot.Image,
		},
		TxHash: receipt.TxHash,
	})
}

// ApproveOrCancelRequest decides a pending request addressed to the session's supplier.
func (c *coordinator) ApproveOrCancelRequest(ctx context.Context, session entity.Session, input usecase.DecideRequestInput) (*usecase.WorkflowResult, error) {
	r, err := c.begin(ctx, session, entity.ActionApproveOrCancelRequest)
	if err != nil {
		return nil, err
	}

	records, err := c.decideRequest(ctx, r, input)
	r.finish(ctx, err)
	if err != nil {
		return nil, err
	}

	return r.result(firstRecord(records), r.reload(ctx, map[string]string{
		usecase.ViewSupplierRequests: fmt.Sprintf(constants.EndpointSupplierRequests, session.Identity),
	})), nil
}

func (c *coordinator) decideRequest(ctx context.Context, r *run, input usecase.DecideRequestInput) ([]entity.StoredRecord, error) {
	requests, err := queryAs[entity.RawMaterialRequest](ctx, c.metadata, fmt.Sprintf(constants.EndpointSupplierRequests, r.session.Identity), nil)
	if err != nil {
		return nil, err
	}

	var req *entity.RawMaterialRequest
	for i := range requests {
		if requests[i].ID == input.RequestID {
			req = &requests[i]

			break
		}
	}
	if req == nil {
		return nil, domainerrors.ErrNotFound.WithDetails("request " + input.RequestID)
	}
	if req.Status != "" && req.Status != entity.RequestPending {
		return nil, domainerrors.Validation("request is already %s", req.Status)
	}
	contractRequestID := req.ContractRequestID.Int64()
	if contractRequestID <= 0 {
		return nil, domainerrors.Validation("request %s has no contract request id", req.ID)
	}

	method, status := constants.MethodApproveRawMaterialRequest, entity.RequestApproved
	if !input.Approve {
		method, status = constants.MethodSupplierCancelRequest, entity.RequestCancelled
	}

	manufacturerName := req.ManufacturerName
	if manufacturerName == "" {
		manufacturerName = c.names.resolve(ctx, req.ManufacturerAddress, req.ManufacturerAddress)
	}
	supplierName := req.SupplierName
	if supplierName == "" {
		supplierName = "Supplier"
	}

	receipt, err := r.invoke(ctx, method, contractRequestID)
	if err != nil {
		return nil, err
	}

	return r.record(ctx, entity.MetadataWrite{
		Method:   http.MethodPost,
		Endpoint: constants.EndpointApprovedAction,
		Payload: map[string]any{
			"requestId":           req.ID,
			"rawId":               req.RawID.Int64(),
			"name":                req.Name,
			"quantity":            req.Quantity.Int64(),
			"price":               req.Price.Int64(),
			"totalPrice":          req.Price.Int64() * req.Quantity.Int64(),
			"manufacturerAddress": req.ManufacturerAddress,
			"manufacturerName":    manufacturerName,
			"supplierId":          r.session.Identity.String(),
			"supplierName":        supplierName,
			"contractRequestId":   contractRequestID,
			"requestApproveId":    contractRequestID,
			"status":              string(status),
			"image":               req.Image,
			"txHash":              receipt.TxHash,
		},
		TxHash: receipt.TxHash,
	})
}
