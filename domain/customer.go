package domain

// Customer types.
const (
	CustomerRegular   = "REGULAR"
	CustomerVIP       = "VIP"
	CustomerWholesale = "WHOLESALE"
)

// ValidCustomerType reports whether t is a recognized customer type.
func ValidCustomerType(t string) bool {
	return t == CustomerRegular || t == CustomerVIP || t == CustomerWholesale
}

// Customer is a loyalty-tracked buyer. CustomerNumber is sequential
// (CUST-000001) and assigned at creation.
type Customer struct {
	ID             string  `db:"id" json:"id"`
	CustomerNumber string  `db:"customer_number" json:"customer_number"`
	Name           string  `db:"name" json:"name"`
	Email          *string `db:"email" json:"email,omitempty"`
	Phone          *string `db:"phone" json:"phone,omitempty"`
	Address        *string `db:"address" json:"address,omitempty"`
	DateOfBirth    *string `db:"date_of_birth" json:"date_of_birth,omitempty"`
	CustomerType   string  `db:"customer_type" json:"customer_type"`
	LoyaltyPoints  int     `db:"loyalty_points" json:"loyalty_points"`
	StoreCredit    float64 `db:"store_credit" json:"store_credit"`
	Notes          *string `db:"notes" json:"notes,omitempty"`
	CreatedAt      string  `db:"created_at" json:"created_at"`

	SalesCount int `db:"sales_count" json:"sales_count"`
}
