package pos

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspos/m/domain"
)

type discountFixture struct {
	code        string
	dtype       string
	value       float64
	minPurchase float64
	maxDiscount *float64
	usageLimit  *int
	usageCount  int
	active      bool
	start       time.Time
	end         time.Time
}

func createDiscount(t *testing.T, db *sqlx.DB, f discountFixture) string {
	t.Helper()
	if f.start.IsZero() {
		f.start = time.Now().UTC().Add(-24 * time.Hour)
	}
	if f.end.IsZero() {
		f.end = time.Now().UTC().Add(24 * time.Hour)
	}
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO discounts
        (id, code, name, discount_type, discount_value, min_purchase, max_discount,
         start_date, end_date, usage_limit, usage_count, is_active)
        VALUES (?, ?, 'Test Discount', ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, f.code, f.dtype, f.value, f.minPurchase, f.maxDiscount,
		f.start.Format(timeLayout), f.end.Format(timeLayout),
		f.usageLimit, f.usageCount, f.active)
	require.NoError(t, err)
	return id
}

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

func TestValidateDiscountPercentageClamped(t *testing.T) {
	svc, db := newTestService(t)
	createDiscount(t, db, discountFixture{
		code: "SAVE10", dtype: domain.DiscountPercentage, value: 10,
		maxDiscount: ptrFloat(50), active: true,
	})

	quote, err := svc.ValidateDiscount("SAVE10", 1000)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, quote.Amount, 0.001, "10% of 1000 clamps to max_discount")

	quote, err = svc.ValidateDiscount("SAVE10", 300)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, quote.Amount, 0.001)
}

func TestValidateDiscountFixedAmount(t *testing.T) {
	svc, db := newTestService(t)
	createDiscount(t, db, discountFixture{
		code: "FLAT20", dtype: domain.DiscountFixedAmount, value: 20,
		minPurchase: 100, active: true,
	})

	quote, err := svc.ValidateDiscount("FLAT20", 150)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, quote.Amount, 0.001)
}

func TestValidateDiscountBelowMinimum(t *testing.T) {
	svc, db := newTestService(t)
	createDiscount(t, db, discountFixture{
		code: "FLAT20", dtype: domain.DiscountFixedAmount, value: 20,
		minPurchase: 100, active: true,
	})

	_, err := svc.ValidateDiscount("FLAT20", 50)
	var belowMin *BelowMinimumError
	require.ErrorAs(t, err, &belowMin)
	assert.InDelta(t, 100.0, belowMin.MinPurchase, 0.001)
}

func TestValidateDiscountCaseInsensitive(t *testing.T) {
	svc, db := newTestService(t)
	createDiscount(t, db, discountFixture{
		code: "SAVE10", dtype: domain.DiscountPercentage, value: 10, active: true,
	})

	quote, err := svc.ValidateDiscount("  save10  ", 100)
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", quote.Discount.Code)
}

func TestValidateDiscountDateOnlyWindow(t *testing.T) {
	svc, db := newTestService(t)
	now := time.Now().UTC()
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO discounts
        (id, code, name, discount_type, discount_value, start_date, end_date, is_active)
        VALUES (?, 'DAYS', 'Date Only', ?, 10, ?, ?, 1)`,
		id, domain.DiscountPercentage,
		now.AddDate(0, 0, -1).Format("2006-01-02"),
		now.AddDate(0, 0, 1).Format("2006-01-02"))
	require.NoError(t, err)

	quote, err := svc.ValidateDiscount("DAYS", 100)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, quote.Amount, 0.001)
}

func TestNormalizeWindowTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-08-30", "2026-08-30 00:00:00"},
		{"2026-08-30T12:30:00Z", "2026-08-30 12:30:00"},
		{"2026-08-30 12:30:00", "2026-08-30 12:30:00"},
		{"  2026-08-30  ", "2026-08-30 00:00:00"},
	}
	for _, tc := range cases {
		got, err := NormalizeWindowTime(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := NormalizeWindowTime("soonish")
	var posErr *Error
	require.ErrorAs(t, err, &posErr)
	assert.Equal(t, KindValidation, posErr.Kind)
}

func TestValidateDiscountUnknownCode(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ValidateDiscount("NOPE", 100)
	var posErr *Error
	require.ErrorAs(t, err, &posErr)
	assert.Equal(t, KindNotFound, posErr.Kind)
}

func TestValidateDiscountInactive(t *testing.T) {
	svc, db := newTestService(t)
	createDiscount(t, db, discountFixture{
		code: "OLD", dtype: domain.DiscountPercentage, value: 10, active: false,
	})

	_, err := svc.ValidateDiscount("OLD", 100)
	var posErr *Error
	require.ErrorAs(t, err, &posErr)
	assert.Equal(t, KindBusinessRule, posErr.Kind)
}

func TestValidateDiscountOutsideWindow(t *testing.T) {
	svc, db := newTestService(t)
	createDiscount(t, db, discountFixture{
		code: "EXPIRED", dtype: domain.DiscountPercentage, value: 10, active: true,
		start: time.Now().UTC().Add(-48 * time.Hour),
		end:   time.Now().UTC().Add(-24 * time.Hour),
	})
	createDiscount(t, db, discountFixture{
		code: "SOON", dtype: domain.DiscountPercentage, value: 10, active: true,
		start: time.Now().UTC().Add(24 * time.Hour),
		end:   time.Now().UTC().Add(48 * time.Hour),
	})

	for _, code := range []string{"EXPIRED", "SOON"} {
		_, err := svc.ValidateDiscount(code, 100)
		var posErr *Error
		require.ErrorAs(t, err, &posErr, code)
		assert.Equal(t, KindBusinessRule, posErr.Kind, code)
	}
}

func TestValidateDiscountUsageLimitReached(t *testing.T) {
	svc, db := newTestService(t)
	createDiscount(t, db, discountFixture{
		code: "ONCE", dtype: domain.DiscountPercentage, value: 10, active: true,
		usageLimit: ptrInt(3), usageCount: 3,
	})

	_, err := svc.ValidateDiscount("ONCE", 100)
	var posErr *Error
	require.ErrorAs(t, err, &posErr)
	assert.Equal(t, KindBusinessRule, posErr.Kind)
}

func TestSaleRedeemsDiscountInTransaction(t *testing.T) {
	svc, db := newTestService(t)
	cashier := createUser(t, db, domain.RoleCashier)
	product := createProduct(t, db, 100, 50)
	discountID := createDiscount(t, db, discountFixture{
		code: "ONCE", dtype: domain.DiscountFixedAmount, value: 20, active: true,
		usageLimit: ptrInt(1),
	})

	sale, err := svc.CreateSale(SaleRequest{
		UserID:         cashier,
		Items:          []SaleLine{{ProductID: product, Quantity: 1}},
		DiscountID:     discountID,
		DiscountAmount: 20,
	})
	require.NoError(t, err)
	assert.InDelta(t, 80.0, sale.NetAmount, 0.001)

	var usage int
	require.NoError(t, db.Get(&usage, `SELECT usage_count FROM discounts WHERE id = ?`, discountID))
	assert.Equal(t, 1, usage)

	var redeemed int
	require.NoError(t, db.Get(&redeemed, `SELECT COUNT(*) FROM sale_discounts WHERE sale_id = ?`, sale.ID))
	assert.Equal(t, 1, redeemed)

	// Second redemption exceeds the limit and rolls the whole sale back.
	_, err = svc.CreateSale(SaleRequest{
		UserID:         cashier,
		Items:          []SaleLine{{ProductID: product, Quantity: 1}},
		DiscountID:     discountID,
		DiscountAmount: 20,
	})
	require.Error(t, err)
	assert.Equal(t, 49, stockOf(t, db, product), "rolled-back sale must restore stock")
}
