package entity

// RawMaterialLot is a supplier's lot created on the ledger and mirrored in the metadata store.
type RawMaterialLot struct {
	ID           string `json:"_id,omitempty"`
	RawID        Int64  `json:"rawId"`
	Name         string `json:"name"`
	Quantity     Int64  `json:"quantity"`
	Price        Int64  `json:"price"`
	Category     string `json:"category"`
	Supplier     string `json:"supplier"`
	SupplierName string `json:"supplierName,omitempty"`
	Image        string `json:"image,omitempty"`
	TxHash       string `json:"txHash,omitempty"`
}

// RequestStatus is the lifecycle of a raw material request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestCancelled RequestStatus = "cancelled"
)

// IsValid checks if the RequestStatus is a valid value.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestCancelled:
		return true
	default:
		return false
	}
}

// RawMaterialRequest is a manufacturer's request against a lot.
// UsedQuantity never exceeds Quantity.
type RawMaterialRequest struct {
	ID                  string        `json:"_id,omitempty"`
	RequestID           string        `json:"requestId,omitempty"`
	ContractRequestID   Int64         `json:"contractRequestId"`
	RawID               Int64         `json:"rawId"`
	Name                string        `json:"name"`
	ManufacturerAddress string        `json:"manufacturerAddress"`
	ManufacturerName    string        `json:"manufacturerName,omitempty"`
	SupplierID          string        `json:"supplierId"`
	SupplierName        string        `json:"supplierName,omitempty"`
	Quantity            Int64         `json:"quantity"`
	Price               Int64         `json:"price"`
	TotalPrice          Int64         `json:"totalPrice,omitempty"`
	Status              RequestStatus `json:"status"`
	UsedQuantity        Int64         `json:"usedQuantity"`
	Image               string        `json:"image,omitempty"`
	TxHash              string        `json:"txHash,omitempty"`
}

// Remaining returns how many units can still back new equipment.
func (r RawMaterialRequest) Remaining() int64 {
	left := r.Quantity.Int64() - r.UsedQuantity.Int64()
	if left < 0 {
		return 0
	}

	return left
}

// Exhausted reports whether every unit of the request has been used.
func (r RawMaterialRequest) Exhausted() bool {
	return r.Remaining() == 0
}
