package domain

// Category groups products for reporting and discount scoping.
type Category struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
}

// Product is a catalog entry. StockLevel is mutated only by sales
// (decrement) and purchases (increment); the update endpoint may apply
// an administrative correction.
type Product struct {
	ID           string  `db:"id" json:"id"`
	Code         string  `db:"code" json:"code"`
	Name         string  `db:"name" json:"name"`
	Description  *string `db:"description" json:"description,omitempty"`
	CategoryID   string  `db:"category_id" json:"category_id"`
	SupplierID   string  `db:"supplier_id" json:"supplier_id"`
	UnitPrice    float64 `db:"unit_price" json:"unit_price"`
	StockLevel   int     `db:"stock_level" json:"stock_level"`
	ReorderLevel int     `db:"reorder_level" json:"reorder_level"`
	Barcode      *string `db:"barcode" json:"barcode,omitempty"`
	IsActive     bool    `db:"is_active" json:"is_active"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
	UpdatedAt    string  `db:"updated_at" json:"updated_at"`

	CategoryName *string `db:"category_name" json:"category_name,omitempty"`
	SupplierName *string `db:"supplier_name" json:"supplier_name,omitempty"`
}
