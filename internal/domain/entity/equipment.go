package entity

// Equipment is built by a manufacturer from an approved request. Verified flips once.
type Equipment struct {
	ID                   string `json:"_id,omitempty"`
	EquipmentID          Int64  `json:"equipmentId"`
	RawMaterialRequestID string `json:"rawMaterialRequestId"`
	Name                 string `json:"name"`
	Price                Int64  `json:"price"`
	Quantity             Int64  `json:"quantity"`
	TotalPrice           Int64  `json:"totalPrice,omitempty"`
	Category             string `json:"category"`
	ManufacturerWallet   string `json:"manufacturerWallet"`
	ManufacturerName     string `json:"manufacturerName,omitempty"`
	SupplierName         string `json:"supplierName,omitempty"`
	Image                string `json:"image,omitempty"`
	Registered           bool   `json:"registered"`
	Verified             bool   `json:"verified"`
	Available            bool   `json:"available"`
	TxHash               string `json:"txHash,omitempty"`
}

// Orderable reports whether hospitals may see the equipment.
func (e Equipment) Orderable() bool {
	return e.Verified && e.Available
}

// StakeholderVerification is the append-only audit row written when equipment is verified.
type StakeholderVerification struct {
	EquipmentID          int64  `json:"equipmentId"`
	Name                 string `json:"name"`
	RawMaterialRequestID string `json:"rawMaterialRequestId"`
	ManufacturerName     string `json:"manufacturerName"`
	Category             string `json:"category"`
	ManufacturerWallet   string `json:"manufacturerWallet"`
	StakeholderName      string `json:"stakeholderName"`
	StakeholderWallet    string `json:"stakeholderWallet"`
	TxHash               string `json:"txHash"`
}
