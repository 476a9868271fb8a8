package domain

// Payment methods accepted at the register.
const (
	PaymentCash    = "CASH"
	PaymentCard    = "CARD"
	PaymentGCash   = "GCASH"
	PaymentPayMaya = "PAYMAYA"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentGCash, PaymentPayMaya:
		return true
	}
	return false
}

// Sale is one completed point-of-sale transaction. It is created once
// and never updated: NetAmount = TotalAmount - DiscountAmount + TaxAmount
// is computed at creation time.
type Sale struct {
	ID             string  `db:"id" json:"id"`
	SaleNumber     string  `db:"sale_number" json:"sale_number"`
	UserID         string  `db:"user_id" json:"user_id"`
	CustomerID     *string `db:"customer_id" json:"customer_id,omitempty"`
	TotalAmount    float64 `db:"total_amount" json:"total_amount"`
	DiscountAmount float64 `db:"discount_amount" json:"discount_amount"`
	TaxAmount      float64 `db:"tax_amount" json:"tax_amount"`
	NetAmount      float64 `db:"net_amount" json:"net_amount"`
	PaymentMethod  string  `db:"payment_method" json:"payment_method"`
	CreatedAt      string  `db:"created_at" json:"created_at"`

	CashierName  string  `db:"cashier_name" json:"cashier_name,omitempty"`
	CustomerName *string `db:"customer_name" json:"customer_name,omitempty"`

	Items []SaleItem `json:"items,omitempty"`
}

// SaleItem is one line of a sale. UnitPrice is a snapshot of the product
// price at sale time; later price edits must not alter it.
type SaleItem struct {
	ID        int64   `db:"id" json:"id"`
	SaleID    string  `db:"sale_id" json:"sale_id"`
	ProductID string  `db:"product_id" json:"product_id"`
	Quantity  int     `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
	Subtotal  float64 `db:"subtotal" json:"subtotal"`

	ProductCode string `db:"product_code" json:"product_code,omitempty"`
	ProductName string `db:"product_name" json:"product_name,omitempty"`
}

// SaleDiscount records which discount code a sale redeemed.
type SaleDiscount struct {
	ID         int64   `db:"id" json:"id"`
	SaleID     string  `db:"sale_id" json:"sale_id"`
	DiscountID string  `db:"discount_id" json:"discount_id"`
	Amount     float64 `db:"amount" json:"amount"`
}
