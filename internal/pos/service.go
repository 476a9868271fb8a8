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

// Service implements the transactional core of the store: sale and
// purchase creation, discount validation and document numbering.
type Service struct {
	db  *sqlx.DB
	log *zap.Logger
}

// NewService creates a new Service.
func NewService(db *sqlx.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, log: logger}
}

// SaleLine is one requested cart line.
type SaleLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// SaleRequest carries everything needed to create a sale. DiscountAmount
// and TaxAmount are computed by the caller (the discount validator runs
// before the sale is submitted); DiscountID, when set, is redeemed inside
// the sale transaction.
type SaleRequest struct {
	UserID         string
	CustomerID     string
	Items          []SaleLine
	DiscountID     string
	DiscountAmount float64
	TaxAmount      float64
	PaymentMethod  string
}

const productColumns = `id, code, name, description, category_id, supplier_id,
    unit_price, stock_level, reorder_level, barcode, is_active, created_at, updated_at`

// CreateSale validates the cart, snapshots prices, decrements stock and
// inserts the sale aggregate in a single transaction. Stock decrements are
// guarded (stock_level >= quantity) so concurrent sales cannot oversell,
// and the sale number comes from an atomic counter.
func (s *Service) CreateSale(req SaleRequest) (*domain.Sale, error) {
	if req.UserID == "" {
		return nil, validationf("cashier is required")
	}
	if len(req.Items) == 0 {
		return nil, validationf("at least one item is required")
	}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, validationf("quantity must be positive for product %s", line.ProductID)
		}
	}
	if req.DiscountAmount < 0 || req.TaxAmount < 0 {
		return nil, validationf("discount and tax amounts must not be negative")
	}
	method := req.PaymentMethod
	if method == "" {
		method = domain.PaymentCash
	}
	if !domain.ValidPaymentMethod(method) {
		return nil, validationf("unknown payment method %s", method)
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var cashier domain.User
	err = tx.Get(&cashier, `SELECT id, username, password, full_name, role, is_active, created_at
        FROM users WHERE id = ?`, req.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundf("cashier not found: %s", req.UserID)
	}
	if err != nil {
		return nil, err
	}

	if req.CustomerID != "" {
		var exists bool
		if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM customers WHERE id = ?)`, req.CustomerID); err != nil {
			return nil, err
		}
		if !exists {
			return nil, notFoundf("customer not found: %s", req.CustomerID)
		}
	}

	var totalAmount float64
	items := make([]domain.SaleItem, 0, len(req.Items))
	for _, line := range req.Items {
		var p domain.Product
		err := tx.Get(&p, `SELECT `+productColumns+` FROM products WHERE id = ?`, line.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundf("product not found: %s", line.ProductID)
		}
		if err != nil {
			return nil, err
		}
		if p.StockLevel < line.Quantity {
			return nil, businessRulef("insufficient stock for %s", p.Name)
		}
		subtotal := p.UnitPrice * float64(line.Quantity)
		totalAmount += subtotal
		items = append(items, domain.SaleItem{
			ProductID: p.ID,
			Quantity:  line.Quantity,
			UnitPrice: p.UnitPrice,
			Subtotal:  subtotal,
		})
	}

	netAmount := totalAmount - req.DiscountAmount + req.TaxAmount

	seq, err := nextSequence(tx, counterSale)
	if err != nil {
		return nil, err
	}
	saleNumber := documentNumber("SALE", seq, time.Now())
	saleID := uuid.NewString()

	customerID := sql.NullString{String: req.CustomerID, Valid: req.CustomerID != ""}
	_, err = tx.Exec(`INSERT INTO sales
        (id, sale_number, user_id, customer_id, total_amount, discount_amount, tax_amount, net_amount, payment_method)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		saleID, saleNumber, req.UserID, customerID, totalAmount, req.DiscountAmount, req.TaxAmount, netAmount, method)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		_, err = tx.Exec(`INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, subtotal)
            VALUES (?, ?, ?, ?, ?)`,
			saleID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal)
		if err != nil {
			return nil, err
		}

		// Guarded decrement: the WHERE clause re-checks stock so two
		// concurrent sales cannot both take the last unit.
		res, err := tx.Exec(`UPDATE products
            SET stock_level = stock_level - ?, updated_at = CURRENT_TIMESTAMP
            WHERE id = ? AND stock_level >= ?`,
			item.Quantity, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			return nil, businessRulef("insufficient stock for product %s", item.ProductID)
		}
	}

	if req.DiscountID != "" {
		// Redemption happens inside the sale transaction; the guard keeps
		// usage_count under usage_limit even under concurrent sales.
		res, err := tx.Exec(`UPDATE discounts SET usage_count = usage_count + 1
            WHERE id = ? AND is_active = 1
            AND (usage_limit IS NULL OR usage_count < usage_limit)`, req.DiscountID)
		if err != nil {
			return nil, err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			return nil, businessRulef("discount is no longer available")
		}
		_, err = tx.Exec(`INSERT INTO sale_discounts (sale_id, discount_id, amount) VALUES (?, ?, ?)`,
			saleID, req.DiscountID, req.DiscountAmount)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.log.Info("sale created",
		zap.String("sale_id", saleID),
		zap.String("sale_number", saleNumber),
		zap.String("cashier", cashier.Username),
		zap.Float64("net_amount", netAmount),
		zap.Int("items", len(items)))

	return s.GetSale(saleID)
}

// GetSale loads a sale with its items and cashier/customer names.
func (s *Service) GetSale(id string) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.Get(&sale, `SELECT s.id, s.sale_number, s.user_id, s.customer_id,
        s.total_amount, s.discount_amount, s.tax_amount, s.net_amount, s.payment_method, s.created_at,
        u.full_name AS cashier_name, c.name AS customer_name
        FROM sales s
        JOIN users u ON u.id = s.user_id
        LEFT JOIN customers c ON c.id = s.customer_id
        WHERE s.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundf("sale not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	err = s.db.Select(&sale.Items, `SELECT si.id, si.sale_id, si.product_id, si.quantity,
        si.unit_price, si.subtotal, p.code AS product_code, p.name AS product_name
        FROM sale_items si
        JOIN products p ON p.id = si.product_id
        WHERE si.sale_id = ?
        ORDER BY si.id`, id)
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListSales returns the most recent sales with their items attached.
func (s *Service) ListSales(limit int) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := s.db.Select(&sales, `SELECT s.id, s.sale_number, s.user_id, s.customer_id,
        s.total_amount, s.discount_amount, s.tax_amount, s.net_amount, s.payment_method, s.created_at,
        u.full_name AS cashier_name, c.name AS customer_name
        FROM sales s
        JOIN users u ON u.id = s.user_id
        LEFT JOIN customers c ON c.id = s.customer_id
        ORDER BY s.created_at DESC, s.sale_number DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return []domain.Sale{}, nil
	}

	ids := make([]string, len(sales))
	for i, sale := range sales {
		ids[i] = sale.ID
	}
	query, args, err := sqlx.In(`SELECT si.id, si.sale_id, si.product_id, si.quantity,
        si.unit_price, si.subtotal, p.code AS product_code, p.name AS product_name
        FROM sale_items si
        JOIN products p ON p.id = si.product_id
        WHERE si.sale_id IN (?)
        ORDER BY si.id`, ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var rows []domain.SaleItem
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	itemsBySale := make(map[string][]domain.SaleItem)
	for _, row := range rows {
		itemsBySale[row.SaleID] = append(itemsBySale[row.SaleID], row)
	}
	for i := range sales {
		items := itemsBySale[sales[i].ID]
		if items == nil {
			items = []domain.SaleItem{}
		}
		sales[i].Items = items
	}
	return sales, nil
}
