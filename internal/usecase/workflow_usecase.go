package usecase

import (
	"context"

	"medchain/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateRawMaterialInput is a supplier's new lot
type CreateRawMaterialInput struct {
	Name     string
	Quantity int64
	Price    int64
	Category string
	Image    *entity.UploadedImage
}

// RequestRawMaterialInput asks a supplier lot for units
type RequestRawMaterialInput struct {
	RawID    int64
	Quantity int64
}

// DecideRequestInput approves or cancels a pending request. RequestID is the backend id.
type DecideRequestInput struct {
	RequestID string
	Approve   bool
}

// CreateEquipmentInput builds equipment from an approved request.
// ApprovedRequestID is the backend id of the approved request and Units the raw units consumed.
type CreateEquipmentInput struct {
	ApprovedRequestID string
	Name              string
	Price             int64
	Category          string
	Units             int64
	Image             *entity.UploadedImage
}

// PlaceOrderInput is a hospital checkout
type PlaceOrderInput struct {
	Items []entity.CartItem
}

// WorkflowResult reports a finished workflow instance.
// Record is the metadata document written for it and Reloaded holds the lists the
// caller refreshes, keyed by view.
type WorkflowResult struct {
	WorkflowID uuid.UUID                        `json:"workflowId"`
	Action     entity.Action                    `json:"action"`
	State      entity.WorkflowState             `json:"state"`
	TxHashes   []string                         `json:"txHashes"`
	Record     entity.StoredRecord              `json:"record,omitempty"`
	Reloaded   map[string][]entity.StoredRecord `json:"reloaded,omitempty"`
}

// Reloaded view names
const (
	ViewRawMaterials     = "rawMaterials"
	ViewApprovedRequests = "approvedRequests"
	ViewSupplierRequests = "supplierRequests"
	ViewEquipment        = "equipment"
	ViewOrders           = "orders"
)

// OrderConfirmation is what a hospital sees after checkout
type OrderConfirmation struct {
	WorkflowResult
	Order entity.Order `json:"order"`
}

// WorkflowUsecase runs the marketplace actions. Every action writes the ledger
// first and mirrors into the metadata store only after the transaction is mined.
type WorkflowUsecase interface {
	CreateRawMaterial(ctx context.Context, session entity.Session, input CreateRawMaterialInput) (*WorkflowResult, error)
	RequestRawMaterial(ctx context.Context, session entity.Session, input RequestRawMaterialInput) (*WorkflowResult, error)
	ApproveOrCancelRequest(ctx context.Context, session entity.Session, input DecideRequestInput) (*WorkflowResult, error)
	CreateEquipment(ctx context.Context, session entity.Session, input CreateEquipmentInput) (*WorkflowResult, error)
	VerifyEquipment(ctx context.Context, session entity.Session, equipmentID string) (*WorkflowResult, error)
	PlaceOrder(ctx context.Context, session entity.Session, input PlaceOrderInput) (*OrderConfirmation, error)
	ShipOrder(ctx context.Context, session entity.Session, orderID string) (*WorkflowResult, error)

	// ShipOrderByQR ships the order encoded in a scanned confirmation QR code
	ShipOrderByQR(ctx context.Context, session entity.Session, qrData string) (*WorkflowResult, error)

	// OrderQR renders the confirmation QR code of an order
	OrderQR(ctx context.Context, session entity.Session, orderID int64) ([]byte, error)
}
