package pos

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"campuspos/m/domain"
)

// PurchaseLine is one received line; the unit cost comes from the caller,
// not from the product record.
type PurchaseLine struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitCost  float64 `json:"unit_cost"`
}

// PurchaseRequest carries everything needed to record received goods.
type PurchaseRequest struct {
	UserID     string
	SupplierID string
	Items      []PurchaseLine
	Notes      string
}

// CreatePurchase records goods received from a supplier and increments
// stock, all in one transaction. There is no sufficiency check: any
// quantity is acceptable since it is being received, not sold.
func (s *Service) CreatePurchase(req PurchaseRequest) (*domain.Purchase, error) {
	if req.UserID == "" {
		return nil, validationf("receiving user is required")
	}
	if req.SupplierID == "" {
		return nil, validationf("supplier is required")
	}
	if len(req.Items) == 0 {
		return nil, validationf("at least one item is required")
	}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, validationf("quantity must be positive for product %s", line.ProductID)
		}
		if line.UnitCost < 0 {
			return nil, validationf("unit cost must not be negative for product %s", line.ProductID)
		}
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var supplierExists bool
	if err := tx.Get(&supplierExists, `SELECT EXISTS(SELECT 1 FROM suppliers WHERE id = ?)`, req.SupplierID); err != nil {
		return nil, err
	}
	if !supplierExists {
		return nil, notFoundf("supplier not found: %s", req.SupplierID)
	}

	var totalAmount float64
	items := make([]domain.PurchaseItem, 0, len(req.Items))
	for _, line := range req.Items {
		var exists bool
		if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, line.ProductID); err != nil {
			return nil, err
		}
		if !exists {
			return nil, notFoundf("product not found: %s", line.ProductID)
		}
		subtotal := line.UnitCost * float64(line.Quantity)
		totalAmount += subtotal
		items = append(items, domain.PurchaseItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
			Subtotal:  subtotal,
		})
	}

	seq, err := nextSequence(tx, counterPurchase)
	if err != nil {
		return nil, err
	}
	purchaseNumber := documentNumber("PO", seq, time.Now())
	purchaseID := uuid.NewString()

	notes := sql.NullString{String: req.Notes, Valid: req.Notes != ""}
	_, err = tx.Exec(`INSERT INTO purchases (id, purchase_number, user_id, supplier_id, total_amount, notes)
        VALUES (?, ?, ?, ?, ?, ?)`,
		purchaseID, purchaseNumber, req.UserID, req.SupplierID, totalAmount, notes)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		_, err = tx.Exec(`INSERT INTO purchase_items (purchase_id, product_id, quantity, unit_cost, subtotal)
            VALUES (?, ?, ?, ?, ?)`,
			purchaseID, item.ProductID, item.Quantity, item.UnitCost, item.Subtotal)
		if err != nil {
			return nil, err
		}
		_, err = tx.Exec(`UPDATE products
            SET stock_level = stock_level + ?, updated_at = CURRENT_TIMESTAMP
            WHERE id = ?`, item.Quantity, item.ProductID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.log.Info("purchase recorded",
		zap.String("purchase_id", purchaseID),
		zap.String("purchase_number", purchaseNumber),
		zap.Float64("total_amount", totalAmount),
		zap.Int("items", len(items)))

	return s.GetPurchase(purchaseID)
}

// GetPurchase loads a purchase with its items and clerk/supplier names.
func (s *Service) GetPurchase(id string) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := s.db.Get(&purchase, `SELECT p.id, p.purchase_number, p.user_id, p.supplier_id,
        p.total_amount, p.notes, p.created_at,
        u.full_name AS clerk_name, sp.company_name AS supplier_name
        FROM purchases p
        JOIN users u ON u.id = p.user_id
        JOIN suppliers sp ON sp.id = p.supplier_id
        WHERE p.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundf("purchase not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	err = s.db.Select(&purchase.Items, `SELECT pi.id, pi.purchase_id, pi.product_id, pi.quantity,
        pi.unit_cost, pi.subtotal, pr.code AS product_code, pr.name AS product_name
        FROM purchase_items pi
        JOIN products pr ON pr.id = pi.product_id
        WHERE pi.purchase_id = ?
        ORDER BY pi.id`, id)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// ListPurchases returns the most recent purchases with items attached.
func (s *Service) ListPurchases(limit int) ([]domain.Purchase, error) {
	var purchases []domain.Purchase
	err := s.db.Select(&purchases, `SELECT p.id, p.purchase_number, p.user_id, p.supplier_id,
        p.total_amount, p.notes, p.created_at,
        u.full_name AS clerk_name, sp.company_name AS supplier_name
        FROM purchases p
        JOIN users u ON u.id = p.user_id
        JOIN suppliers sp ON sp.id = p.supplier_id
        ORDER BY p.created_at DESC, p.purchase_number DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	if len(purchases) == 0 {
		return []domain.Purchase{}, nil
	}

	ids := make([]string, len(purchases))
	for i, p := range purchases {
		ids[i] = p.ID
	}
	query, args, err := sqlx.In(`SELECT pi.id, pi.purchase_id, pi.product_id, pi.quantity,
        pi.unit_cost, pi.subtotal, pr.code AS product_code, pr.name AS product_name
        FROM purchase_items pi
        JOIN products pr ON pr.id = pi.product_id
        WHERE pi.purchase_id IN (?)
        ORDER BY pi.id`, ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var rows []domain.PurchaseItem
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	itemsByPurchase := make(map[string][]domain.PurchaseItem)
	for _, row := range rows {
		itemsByPurchase[row.PurchaseID] = append(itemsByPurchase[row.PurchaseID], row)
	}
	for i := range purchases {
		items := itemsByPurchase[purchases[i].ID]
		if items == nil {
			items = []domain.PurchaseItem{}
		}
		purchases[i].Items = items
	}
	return purchases, nil
}
