package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"campuspos/m/domain"
	"campuspos/m/internal/api"
	"campuspos/m/internal/config"
	"campuspos/m/internal/migrations"
	"campuspos/m/internal/pos"
)

type testServer struct {
	router http.Handler
	db     *sqlx.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.db")
	db, err := sqlx.Connect("sqlite", path)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)
	migrations.Run(db)
	t.Cleanup(func() { db.Close() })

	logger := zaptest.NewLogger(t)
	cfg := config.Config{Secret: "test-secret", DatabasePath: path, HTTPPort: "0"}
	handler := api.New(db, pos.NewService(db, logger), cfg, logger)
	return &testServer{router: handler.Router(), db: db}
}

func (ts *testServer) seedUser(t *testing.T, username, password, role string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	id := uuid.NewString()
	_, err = ts.db.Exec(`INSERT INTO users (id, username, password, full_name, role) VALUES (?, ?, ?, 'Test User', ?)`,
		id, username, hashed, role)
	require.NoError(t, err)
	return id
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := ts.request(t, http.MethodPost, "/auth/login", "",
		map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (ts *testServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) seedProduct(t *testing.T, price float64, stock int) string {
	t.Helper()
	catID := uuid.NewString()
	_, err := ts.db.Exec(`INSERT INTO categories (id, name) VALUES (?, ?)`, catID, "cat-"+catID[:8])
	require.NoError(t, err)
	supID := uuid.NewString()
	_, err = ts.db.Exec(`INSERT INTO suppliers (id, company_name, contact_person, phone) VALUES (?, 'Acme', 'A', '1')`, supID)
	require.NoError(t, err)
	id := uuid.NewString()
	_, err = ts.db.Exec(`INSERT INTO products (id, code, name, category_id, supplier_id, unit_price, stock_level)
        VALUES (?, ?, 'Test Product', ?, ?, ?, ?)`,
		id, "code-"+id[:8], catID, supID, price, stock)
	require.NoError(t, err)
	return id
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "admin", "admin123", domain.RoleAdmin)

	rec := ts.request(t, http.MethodPost, "/auth/login", "",
		map[string]string{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.User.Username)
	assert.Empty(t, resp.User.Password, "password hash must not leak")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "admin", "admin123", domain.RoleAdmin)

	rec := ts.request(t, http.MethodPost, "/auth/login", "",
		map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.request(t, http.MethodPost, "/auth/login", "",
		map[string]string{"username": "ghost", "password": "admin123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	ts := newTestServer(t)
	id := ts.seedUser(t, "former", "pass123", domain.RoleCashier)
	_, err := ts.db.Exec(`UPDATE users SET is_active = 0 WHERE id = ?`, id)
	require.NoError(t, err)

	rec := ts.request(t, http.MethodPost, "/auth/login", "",
		map[string]string{"username": "former", "password": "pass123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.request(t, http.MethodGet, "/products", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserRoutesRequireAdmin(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "admin", "admin123", domain.RoleAdmin)
	ts.seedUser(t, "cashier", "cash123", domain.RoleCashier)

	cashierToken := ts.login(t, "cashier", "cash123")
	rec := ts.request(t, http.MethodGet, "/users", cashierToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken := ts.login(t, "admin", "admin123")
	rec = ts.request(t, http.MethodGet, "/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateSaleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "cashier", "cash123", domain.RoleCashier)
	product := ts.seedProduct(t, 45.00, 100)
	token := ts.login(t, "cashier", "cash123")

	rec := ts.request(t, http.MethodPost, "/sales", token, map[string]any{
		"items":          []map[string]any{{"product_id": product, "quantity": 2}},
		"tax_amount":     10.8,
		"payment_method": "CASH",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sale domain.Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sale))
	assert.InDelta(t, 90.0, sale.TotalAmount, 0.001)
	assert.InDelta(t, 100.8, sale.NetAmount, 0.001)
	today := time.Now().UTC().Format("20060102")
	assert.Equal(t, fmt.Sprintf("SALE-%s-0001", today), sale.SaleNumber)

	var stock int
	require.NoError(t, ts.db.Get(&stock, `SELECT stock_level FROM products WHERE id = ?`, product))
	assert.Equal(t, 98, stock)
}

func TestCreateSaleInsufficientStockOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "cashier", "cash123", domain.RoleCashier)
	product := ts.seedProduct(t, 10, 1)
	token := ts.login(t, "cashier", "cash123")

	rec := ts.request(t, http.MethodPost, "/sales", token, map[string]any{
		"items": []map[string]any{{"product_id": product, "quantity": 5}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient stock")
}

func TestValidateDiscountOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "cashier", "cash123", domain.RoleCashier)
	token := ts.login(t, "cashier", "cash123")

	now := time.Now().UTC()
	_, err := ts.db.Exec(`INSERT INTO discounts
        (id, code, name, discount_type, discount_value, min_purchase, max_discount, start_date, end_date)
        VALUES (?, 'SAVE10', 'Ten Percent', 'PERCENTAGE', 10, 0, 50, ?, ?)`,
		uuid.NewString(),
		now.Add(-time.Hour).Format("2006-01-02 15:04:05"),
		now.Add(time.Hour).Format("2006-01-02 15:04:05"))
	require.NoError(t, err)

	rec := ts.request(t, http.MethodPost, "/discounts/validate", token,
		map[string]any{"code": "save10", "subtotal": 1000.0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Valid    bool `json:"valid"`
		Discount struct {
			Code           string  `json:"code"`
			DiscountAmount float64 `json:"discount_amount"`
		} `json:"discount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, "SAVE10", resp.Discount.Code)
	assert.InDelta(t, 50.0, resp.Discount.DiscountAmount, 0.001)
}

func TestValidateDiscountBelowMinimumOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "cashier", "cash123", domain.RoleCashier)
	token := ts.login(t, "cashier", "cash123")

	now := time.Now().UTC()
	_, err := ts.db.Exec(`INSERT INTO discounts
        (id, code, name, discount_type, discount_value, min_purchase, start_date, end_date)
        VALUES (?, 'FLAT20', 'Flat Twenty', 'FIXED_AMOUNT', 20, 100, ?, ?)`,
		uuid.NewString(),
		now.Add(-time.Hour).Format("2006-01-02 15:04:05"),
		now.Add(time.Hour).Format("2006-01-02 15:04:05"))
	require.NoError(t, err)

	rec := ts.request(t, http.MethodPost, "/discounts/validate", token,
		map[string]any{"code": "FLAT20", "subtotal": 50.0})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error       string  `json:"error"`
		MinPurchase float64 `json:"min_purchase"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 100.0, resp.MinPurchase, 0.001)
	assert.Contains(t, resp.Error, "minimum purchase")
}

func TestCreateCustomerAssignsNumber(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "cashier", "cash123", domain.RoleCashier)
	token := ts.login(t, "cashier", "cash123")

	rec := ts.request(t, http.MethodPost, "/customers", token,
		map[string]any{"name": "Juana Cruz", "customer_type": "REGULAR"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var customer domain.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customer))
	assert.Equal(t, "CUST-000001", customer.CustomerNumber)
}

func TestCreateProductConflict(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "admin", "admin123", domain.RoleAdmin)
	token := ts.login(t, "admin", "admin123")

	catRec := ts.request(t, http.MethodPost, "/categories", token, map[string]any{"name": "Stationery"})
	require.Equal(t, http.StatusCreated, catRec.Code)
	var category domain.Category
	require.NoError(t, json.Unmarshal(catRec.Body.Bytes(), &category))

	supRec := ts.request(t, http.MethodPost, "/suppliers", token, map[string]any{
		"company_name": "Acme", "contact_person": "A", "phone": "1",
	})
	require.Equal(t, http.StatusCreated, supRec.Code)
	var supplier domain.Supplier
	require.NoError(t, json.Unmarshal(supRec.Body.Bytes(), &supplier))

	payload := map[string]any{
		"code": "PROD-001", "name": "Notebook",
		"category_id": category.ID, "supplier_id": supplier.ID, "unit_price": 45.0,
	}
	rec := ts.request(t, http.MethodPost, "/products", token, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.request(t, http.MethodPost, "/products", token, payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAssignBarcodeOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "admin", "admin123", domain.RoleAdmin)
	product := ts.seedProduct(t, 45, 10)
	token := ts.login(t, "admin", "admin123")

	rec := ts.request(t, http.MethodPost, "/products/"+product+"/barcode", token,
		map[string]any{"barcode_type": "EAN13"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Barcode string `json:"barcode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Barcode, 13)

	// Stored barcode comes back on subsequent reads.
	rec = ts.request(t, http.MethodGet, "/products/"+product+"/barcode", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lookup struct {
		Barcode    string `json:"barcode"`
		HasBarcode bool   `json:"has_barcode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lookup))
	assert.True(t, lookup.HasBarcode)
	assert.Equal(t, resp.Barcode, lookup.Barcode)
}

func TestBackupRequiresAdmin(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "admin", "admin123", domain.RoleAdmin)
	ts.seedUser(t, "cashier", "cash123", domain.RoleCashier)

	cashierToken := ts.login(t, "cashier", "cash123")
	rec := ts.request(t, http.MethodPost, "/backup/create", cashierToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken := ts.login(t, "admin", "admin123")
	rec = ts.request(t, http.MethodPost, "/backup/create", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "store-backup-")
	assert.NotZero(t, rec.Body.Len())
}

func TestCreateDiscountThenValidate(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "admin", "admin123", domain.RoleAdmin)
	token := ts.login(t, "admin", "admin123")

	now := time.Now().UTC()
	rec := ts.request(t, http.MethodPost, "/discounts", token, map[string]any{
		"code":           "http10",
		"name":           "Ten Off",
		"discount_type":  "PERCENTAGE",
		"discount_value": 10,
		"start_date":     now.AddDate(0, 0, -1).Format("2006-01-02"),
		"end_date":       now.AddDate(0, 0, 1).Format("2006-01-02"),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Discount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "HTTP10", created.Code)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, created.StartDate,
		"window dates are normalized at creation")

	rec = ts.request(t, http.MethodPost, "/discounts/validate", token,
		map[string]any{"code": "HTTP10", "subtotal": 200.0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Valid    bool `json:"valid"`
		Discount struct {
			DiscountAmount float64 `json:"discount_amount"`
		} `json:"discount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.InDelta(t, 20.0, resp.Discount.DiscountAmount, 0.001)
}

func TestCreateDiscountRejectsBadDates(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "admin", "admin123", domain.RoleAdmin)
	token := ts.login(t, "admin", "admin123")

	rec := ts.request(t, http.MethodPost, "/discounts", token, map[string]any{
		"code":           "BAD",
		"name":           "Bad Window",
		"discount_type":  "PERCENTAGE",
		"discount_value": 10,
		"start_date":     "soonish",
		"end_date":       "2026-12-31",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "start_date")
}

func TestValidateDiscountAcceptsTotalAmount(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "cashier", "cash123", domain.RoleCashier)
	token := ts.login(t, "cashier", "cash123")

	now := time.Now().UTC()
	_, err := ts.db.Exec(`INSERT INTO discounts
        (id, code, name, discount_type, discount_value, start_date, end_date)
        VALUES (?, 'SAVE10', 'Ten Percent', 'PERCENTAGE', 10, ?, ?)`,
		uuid.NewString(),
		now.Add(-time.Hour).Format("2006-01-02 15:04:05"),
		now.Add(time.Hour).Format("2006-01-02 15:04:05"))
	require.NoError(t, err)

	rec := ts.request(t, http.MethodPost, "/discounts/validate", token,
		map[string]any{"code": "SAVE10", "total_amount": 200.0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Discount struct {
			DiscountAmount float64 `json:"discount_amount"`
		} `json:"discount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 20.0, resp.Discount.DiscountAmount, 0.001)
}

func TestInventoryStatusEmptyCatalog(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "cashier", "cash123", domain.RoleCashier)
	token := ts.login(t, "cashier", "cash123")

	rec := ts.request(t, http.MethodGet, "/reports/inventory-status", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		TotalProducts   int     `json:"total_products"`
		LowStockCount   int     `json:"low_stock_count"`
		OutOfStockCount int     `json:"out_of_stock_count"`
		TotalValue      float64 `json:"total_inventory_value"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.TotalProducts)
	assert.Zero(t, resp.LowStockCount)
	assert.Zero(t, resp.OutOfStockCount)
	assert.Zero(t, resp.TotalValue)
}

func TestTopProductsIncludesUnsoldProducts(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "cashier", "cash123", domain.RoleCashier)
	sold := ts.seedProduct(t, 10, 100)
	unsold := ts.seedProduct(t, 10, 100)
	token := ts.login(t, "cashier", "cash123")

	rec := ts.request(t, http.MethodPost, "/sales", token, map[string]any{
		"items": []map[string]any{{"product_id": sold, "quantity": 6}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.request(t, http.MethodGet, "/reports/top-products", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		TopProducts []struct {
			ProductID string `json:"product_id"`
			UnitsSold int    `json:"units_sold"`
		} `json:"top_products"`
		SlowMovers []struct {
			ProductID string `json:"product_id"`
			UnitsSold int    `json:"units_sold"`
		} `json:"slow_movers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.TopProducts, 1)
	assert.Equal(t, sold, resp.TopProducts[0].ProductID)
	assert.Equal(t, 6, resp.TopProducts[0].UnitsSold)

	require.Len(t, resp.SlowMovers, 1, "a product with zero sales is the slowest mover")
	assert.Equal(t, unsold, resp.SlowMovers[0].ProductID)
	assert.Zero(t, resp.SlowMovers[0].UnitsSold)
}

func TestDashboardStats(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "cashier", "cash123", domain.RoleCashier)
	product := ts.seedProduct(t, 45, 100)
	token := ts.login(t, "cashier", "cash123")

	rec := ts.request(t, http.MethodPost, "/sales", token, map[string]any{
		"items": []map[string]any{{"product_id": product, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.request(t, http.MethodGet, "/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stats struct {
		TotalProducts int     `json:"total_products"`
		TodaySales    int     `json:"today_sales"`
		TodayRevenue  float64 `json:"today_revenue"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalProducts)
	assert.Equal(t, 1, stats.TodaySales)
	assert.InDelta(t, 90.0, stats.TodayRevenue, 0.001)
}
