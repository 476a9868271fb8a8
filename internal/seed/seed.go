// Package seed populates a fresh database with a default admin account and
// a starter catalog so the API is usable immediately after first boot.
package seed

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"campuspos/m/domain"
)

type seedUser struct {
	username string
	password string
	fullName string
	role     string
}

type seedProduct struct {
	code     string
	name     string
	category string
	price    float64
	stock    int
	reorder  int
}

// Run seeds default users, categories, a supplier and a starter catalog.
// It is a no-op when any user already exists.
func Run(db *sqlx.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM users`); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	users := []seedUser{
		{"admin", "admin123", "Store Administrator", domain.RoleAdmin},
		{"cashier", "cashier123", "Front Desk Cashier", domain.RoleCashier},
		{"clerk", "clerk123", "Inventory Clerk", domain.RoleInventoryClerk},
	}
	for _, u := range users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		_, err = db.Exec(`INSERT INTO users (id, username, password, full_name, role) VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), u.username, hashed, u.fullName, u.role)
		if err != nil {
			return err
		}
	}

	categories := map[string]string{
		"School Supplies": "",
		"Electronics":     "",
		"Apparel":         "",
		"Snacks":          "",
	}
	for name := range categories {
		id := uuid.NewString()
		categories[name] = id
		_, err := db.Exec(`INSERT INTO categories (id, name) VALUES (?, ?)`, id, name)
		if err != nil {
			return err
		}
	}

	supplierID := uuid.NewString()
	_, err := db.Exec(`INSERT INTO suppliers (id, company_name, contact_person, phone)
        VALUES (?, ?, ?, ?)`,
		supplierID, "Metro Campus Trading", "R. Santos", "+63-917-555-0101")
	if err != nil {
		return err
	}

	products := []seedProduct{
		{"PROD-001", "Spiral Notebook 80 Leaves", "School Supplies", 45.00, 120, 20},
		{"PROD-002", "Ballpoint Pen Black", "School Supplies", 12.00, 300, 50},
		{"PROD-003", "Mechanical Pencil 0.5mm", "School Supplies", 35.00, 80, 15},
		{"PROD-004", "Highlighter Set of 4", "School Supplies", 98.00, 60, 10},
		{"PROD-005", "Scientific Calculator", "Electronics", 650.00, 25, 5},
		{"PROD-006", "USB Flash Drive 32GB", "Electronics", 320.00, 40, 10},
		{"PROD-007", "Wired Earphones", "Electronics", 180.00, 50, 10},
		{"PROD-008", "University Hoodie", "Apparel", 850.00, 30, 5},
		{"PROD-009", "University T-Shirt", "Apparel", 350.00, 70, 10},
		{"PROD-010", "Lanyard with ID Holder", "Apparel", 75.00, 150, 25},
		{"PROD-011", "Bottled Water 500ml", "Snacks", 20.00, 200, 40},
		{"PROD-012", "Instant Coffee Sachet", "Snacks", 15.00, 180, 30},
	}
	for _, p := range products {
		_, err := db.Exec(`INSERT INTO products
            (id, code, name, category_id, supplier_id, unit_price, stock_level, reorder_level)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), p.code, p.name, categories[p.category], supplierID,
			p.price, p.stock, p.reorder)
		if err != nil {
			return err
		}
	}

	logger.Info("database seeded",
		zap.Int("users", len(users)),
		zap.Int("categories", len(categories)),
		zap.Int("products", len(products)))
	return nil
}
