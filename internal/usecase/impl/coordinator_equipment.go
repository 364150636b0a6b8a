package impl

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"medchain/internal/domain/constants"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/usecase"
)

// CreateEquipment builds equipment from an approved request and records the units it used.
func (c *coordinator) CreateEquipment(ctx context.Context, session entity.Session, input usecase.CreateEquipmentInput) (*usecase.WorkflowResult, error) {
	r, err := c.begin(ctx, session, entity.ActionCreateEquipment)
	if err != nil {
		return nil, err
	}

	records, err := c.createEquipment(ctx, r, input)
	r.finish(ctx, err)
	if err != nil {
		return nil, err
	}

	return r.result(firstRecord(records), r.reload(ctx, map[string]string{
		usecase.ViewApprovedRequests: fmt.Sprintf(constants.EndpointApprovedByManufacturer, session.Identity),
	})), nil
}

func (c *coordinator) createEquipment(ctx context.Context, r *run, input usecase.CreateEquipmentInput) ([]entity.StoredRecord, error) {
	if !r.session.ProfileMatchesWallet() {
		return nil, domainerrors.Validation("logged-in profile belongs to wallet %s", r.session.Profile.WalletAddress)
	}

	name := strings.TrimSpace(input.Name)
	category := strings.TrimSpace(input.Category)
	switch {
	case name == "" || category == "":
		return nil, domainerrors.Validation("name and category are required")
	case input.Price <= 0:
		return nil, domainerrors.Validation("price must be greater than 0")
	case input.Units <= 0:
		return nil, domainerrors.Validation("raw units per equipment must be greater than 0")
	}

	approved, err := queryAs[entity.RawMaterialRequest](ctx, c.metadata, fmt.Sprintf(constants.EndpointApprovedByManufacturer, r.session.Identity), nil)
	if err != nil {
		return nil, err
	}

	var req *entity.RawMaterialRequest
	for i := range approved {
		if approved[i].ID == input.ApprovedRequestID || (approved[i].RequestID != "" && approved[i].RequestID == input.ApprovedRequestID) {
			req = &approved[i]

			break
		}
	}
	if req == nil {
		return nil, domainerrors.ErrNotFound.WithDetails("approved request " + input.ApprovedRequestID)
	}
	if req.Status != "" && req.Status != entity.RequestApproved {
		return nil, domainerrors.Validation("request is %s, not approved", req.Status)
	}
	if req.UsedQuantity.Int64()+input.Units > req.Quantity.Int64() {
		return nil, domainerrors.Validation("needs %d raw units but only %d of %d remain", input.Units, req.Remaining(), req.Quantity.Int64())
	}
	contractRequestID := req.ContractRequestID.Int64()
	if contractRequestID <= 0 {
		return nil, domainerrors.Validation("request %s has no contract request id", req.ID)
	}

	manufacturerName := ""
	if r.session.Profile != nil {
		manufacturerName = r.session.Profile.Name
	}
	if manufacturerName == "" {
		manufacturerName = c.names.resolve(ctx, r.session.Identity.String(), "Manufacturer")
	}
	supplierName := req.SupplierName
	if supplierName == "" {
		supplierName = constants.UnknownName
	}

	receipt, err := r.invoke(ctx, constants.MethodCreateEquipment, name, contractRequestID, input.Price, category, true)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"rawMaterialRequestId": strconv.FormatInt(contractRequestID, 10),
		"name":                 name,
		"price":                input.Price,
		"quantity":             input.Units,
		"totalPrice":           input.Price * input.Units,
		"category":             category,
		"manufacturerWallet":   r.session.Identity.String(),
		"manufacturerName":     manufacturerName,
		"supplierName":         supplierName,
		"txHash":               receipt.TxHash,
		"registered":           "true",
		"verified":             "false",
		"available":            "false",
	}
	if equipmentID, ok := receipt.EventInt(constants.EventEquipmentCreated, constants.EventFieldEquipmentID); ok {
		payload["equipmentId"] = equipmentID
	}

	return r.record(ctx,
		entity.MetadataWrite{
			Method:   http.MethodPost,
			Endpoint: constants.EndpointEquipmentCreate,
			Payload:  payload,
			Image:    input.Image,
			TxHash:   receipt.TxHash,
		},
		entity.MetadataWrite{
			Method:   http.MethodPost,
			Endpoint: constants.EndpointApprovedUpdateUsed,
			Payload: map[string]any{
				"requestId":    contractRequestID,
				"usedQuantity": input.Units,
			},
			TxHash: receipt.TxHash,
		},
	)
}

// VerifyEquipment flips verified once. A second verify stops before the ledger.
func (c *coordinator) VerifyEquipment(ctx context.Context, session entity.Session, equipmentID string) (*usecase.WorkflowResult, error) {
	r, err := c.begin(ctx, session, entity.ActionVerifyEquipment)
	if err != nil {
		return nil, err
	}

	records, err := c.verifyEquipment(ctx, r, equipmentID)
	r.finish(ctx, err)
	if err != nil {
		return nil, err
	}

	// The PUT returns the updated equipment document.
	var record entity.StoredRecord
	if len(records) > 1 {
		record = records[1]
	}

	return r.result(record, r.reload(ctx, map[string]string{
		usecase.ViewEquipment: constants.EndpointEquipment,
	})), nil
}

func (c *coordinator) verifyEquipment(ctx context.Context, r *run, key string) ([]entity.StoredRecord, error) {
	list, err := queryAs[entity.Equipment](ctx, c.metadata, constants.EndpointEquipment, nil)
	if err != nil {
		return nil, err
	}

	var eq *entity.Equipment
	for i := range list {
		if matchesKey(key, list[i].ID, list[i].EquipmentID.Int64()) {
			eq = &list[i]

			break
		}
	}
	if eq == nil {
		return nil, domainerrors.ErrNotFound.WithDetails("equipment " + key)
	}
	if eq.Verified {
		return nil, domainerrors.Validation("equipment %s is already verified", key)
	}
	equipmentID := eq.EquipmentID.Int64()
	if equipmentID <= 0 {
		return nil, domainerrors.Validation("equipment %s has no ledger id", key)
	}

	verification, err := toPayload(entity.StakeholderVerification{
		EquipmentID:          equipmentID,
		Name:                 eq.Name,
		RawMaterialRequestID: eq.RawMaterialRequestID,
		ManufacturerName:     eq.ManufacturerName,
		Category:             eq.Category,
		ManufacturerWallet:   eq.ManufacturerWallet,
		StakeholderName:      r.views.displayName(ctx, r.session.Identity),
		StakeholderWallet:    r.session.Identity.String(),
	})
	if err != nil {
		return nil, err
	}

	receipt, err := r.invoke(ctx, constants.MethodVerifyEquipment, equipmentID, true)
	if err != nil {
		return nil, err
	}
	verification["txHash"] = receipt.TxHash

	return r.record(ctx,
		entity.MetadataWrite{
			Method:   http.MethodPost,
			Endpoint: constants.EndpointStakeholderVerification,
			Payload:  verification,
			TxHash:   receipt.TxHash,
		},
		entity.MetadataWrite{
			Method:   http.MethodPut,
			Endpoint: fmt.Sprintf(constants.EndpointEquipmentVerify, eq.ID),
			Payload:  map[string]any{"verified": true},
			TxHash:   receipt.TxHash,
		},
	)
}
