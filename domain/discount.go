package domain

// Discount types.
const (
	DiscountPercentage  = "PERCENTAGE"
	DiscountFixedAmount = "FIXED_AMOUNT"
)

// Discount is a redeemable code. Codes are stored uppercase and matched
// case-insensitively. UsageCount is incremented once per successful sale
// that redeems the code, inside that sale's transaction.
type Discount struct {
	ID            string   `db:"id" json:"id"`
	Code          string   `db:"code" json:"code"`
	Name          string   `db:"name" json:"name"`
	Description   *string  `db:"description" json:"description,omitempty"`
	DiscountType  string   `db:"discount_type" json:"discount_type"`
	DiscountValue float64  `db:"discount_value" json:"discount_value"`
	MinPurchase   float64  `db:"min_purchase" json:"min_purchase"`
	MaxDiscount   *float64 `db:"max_discount" json:"max_discount,omitempty"`
	StartDate     string   `db:"start_date" json:"start_date"`
	EndDate       string   `db:"end_date" json:"end_date"`
	UsageLimit    *int     `db:"usage_limit" json:"usage_limit,omitempty"`
	UsageCount    int      `db:"usage_count" json:"usage_count"`
	IsActive      bool     `db:"is_active" json:"is_active"`
	ApplicableFor string   `db:"applicable_for" json:"applicable_for"`
	CreatedAt     string   `db:"created_at" json:"created_at"`
}
