package service

// OrderQRPayload is what an order confirmation QR code encodes
type OrderQRPayload struct {
	OrderID  int64    `json:"order_id"`
	TxHashes []string `json:"tx_hashes"`
}

// QRCodeService defines the interface for QR code generation and parsing services
type QRCodeService interface {
	// GenerateOrderQR renders the confirmation code of a placed order as PNG
	GenerateOrderQR(payload OrderQRPayload) ([]byte, error)

	// ParseOrderQR decodes scanned QR text
	ParseOrderQR(qrData string) (*OrderQRPayload, error)
}
