package domain

// Purchase records goods received from a supplier. Stock increments
// happen in the same transaction that inserts the purchase.
type Purchase struct {
	ID             string  `db:"id" json:"id"`
	PurchaseNumber string  `db:"purchase_number" json:"purchase_number"`
	UserID         string  `db:"user_id" json:"user_id"`
	SupplierID     string  `db:"supplier_id" json:"supplier_id"`
	TotalAmount    float64 `db:"total_amount" json:"total_amount"`
	Notes          *string `db:"notes" json:"notes,omitempty"`
	CreatedAt      string  `db:"created_at" json:"created_at"`

	ClerkName    string `db:"clerk_name" json:"clerk_name,omitempty"`
	SupplierName string `db:"supplier_name" json:"supplier_name,omitempty"`

	Items []PurchaseItem `json:"items,omitempty"`
}

// PurchaseItem is one received line; UnitCost is supplied by the caller.
type PurchaseItem struct {
	ID         int64   `db:"id" json:"id"`
	PurchaseID string  `db:"purchase_id" json:"purchase_id"`
	ProductID  string  `db:"product_id" json:"product_id"`
	Quantity   int     `db:"quantity" json:"quantity"`
	UnitCost   float64 `db:"unit_cost" json:"unit_cost"`
	Subtotal   float64 `db:"subtotal" json:"subtotal"`

	ProductCode string `db:"product_code" json:"product_code,omitempty"`
	ProductName string `db:"product_name" json:"product_name,omitempty"`
}
