package entity

import "time"

// OrderUser is the buyer snapshot stored with an order.
type OrderUser struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Contact       string `json:"contact,omitempty"`
	UserAddress   string `json:"userAddress,omitempty"`
	WalletAddress string `json:"walletAddress"`
}

// OrderItem is one equipment line of an order with the tx that ordered it.
type OrderItem struct {
	EquipmentID Int64  `json:"equipmentId"`
	Name        string `json:"name"`
	Quantity    Int64  `json:"quantity"`
	Price       Int64  `json:"price"`
	Image       string `json:"image,omitempty"`
	TxHash      string `json:"txHash"`
}

// Order is a hospital checkout. OrderID is client generated, not ledger derived.
type Order struct {
	ID         string      `json:"_id,omitempty"`
	OrderID    Int64       `json:"orderId"`
	User       OrderUser   `json:"user"`
	Items      []OrderItem `json:"items"`
	TotalPrice Int64       `json:"totalPrice"`
	Shipped    bool        `json:"shipped"`
	Delivered  bool        `json:"delivered"`
	OrderDate  time.Time   `json:"orderDate"`
}

// TxHashes lists the per-item ledger transactions.
func (o Order) TxHashes() []string {
	hashes := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		hashes = append(hashes, item.TxHash)
	}

	return hashes
}

// TransporterRecord is the per-item audit row written when an order ships.
type TransporterRecord struct {
	OrderID           int64     `json:"orderId"`
	OrderDate         time.Time `json:"orderDate"`
	TxHash            string    `json:"txHash"`
	HospitalName      string    `json:"hospitalName"`
	HospitalWallet    string    `json:"hospitalWallet"`
	EquipmentID       int64     `json:"equipmentId"`
	EquipmentName     string    `json:"equipmentName"`
	TransporterName   string    `json:"transporterName"`
	TransporterWallet string    `json:"transporterWallet"`
}

// CartItem is a requested line at checkout. Available is the quantity shown when
// the cart was built and only bounds the client-side clamp.
type CartItem struct {
	EquipmentID int64
	Name        string
	Quantity    int64
	Available   int64
	Price       int64
	Image       string
}
