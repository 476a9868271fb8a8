package domain

// Supplier is a source of purchased stock.
type Supplier struct {
	ID            string  `db:"id" json:"id"`
	CompanyName   string  `db:"company_name" json:"company_name"`
	ContactPerson string  `db:"contact_person" json:"contact_person"`
	Email         *string `db:"email" json:"email,omitempty"`
	Phone         string  `db:"phone" json:"phone"`
	Address       *string `db:"address" json:"address,omitempty"`
	IsActive      bool    `db:"is_active" json:"is_active"`
	CreatedAt     string  `db:"created_at" json:"created_at"`
}
