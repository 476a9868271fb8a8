package pos

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"campuspos/m/domain"
)

// timeLayout matches SQLite's CURRENT_TIMESTAMP text format; all dates
// written by this package use it so comparisons stay consistent.
const timeLayout = "2006-01-02 15:04:05"

// windowLayouts are the formats accepted for client-supplied discount
// windows. Storage always uses timeLayout.
var windowLayouts = []string{timeLayout, time.RFC3339, "2006-01-02"}

func parseWindowTime(s string) (time.Time, error) {
	for _, layout := range windowLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// NormalizeWindowTime parses a window timestamp in any accepted layout
// and reformats it for storage. Unparseable input is a validation error.
func NormalizeWindowTime(s string) (string, error) {
	t, err := parseWindowTime(strings.TrimSpace(s))
	if err != nil {
		return "", validationf("unrecognized date %q", s)
	}
	return t.UTC().Format(timeLayout), nil
}

// DiscountQuote is the result of a successful validation: the matched
// discount and the amount it would take off the given subtotal.
type DiscountQuote struct {
	Discount domain.Discount
	Amount   float64
}

// ValidateDiscount checks a code against a candidate subtotal and computes
// the discount amount. It is read-only: usage_count is incremented only by
// the sale transaction that redeems the code.
//
// Checks run in order and short-circuit: existence, active flag, validity
// window, usage limit, minimum purchase.
func (s *Service) ValidateDiscount(code string, subtotal float64) (*DiscountQuote, error) {
	if strings.TrimSpace(code) == "" {
		return nil, validationf("discount code is required")
	}

	var d domain.Discount
	err := s.db.Get(&d, `SELECT id, code, name, description, discount_type, discount_value,
        min_purchase, max_discount, start_date, end_date, usage_limit, usage_count,
        is_active, applicable_for, created_at
        FROM discounts WHERE code = ?`, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundf("invalid discount code")
	}
	if err != nil {
		return nil, err
	}

	if !d.IsActive {
		return nil, businessRulef("this discount code is no longer active")
	}

	now := time.Now().UTC()
	start, err := parseWindowTime(d.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseWindowTime(d.EndDate)
	if err != nil {
		return nil, err
	}
	if now.Before(start) || now.After(end) {
		return nil, businessRulef("this discount code is not valid at this time")
	}

	if d.UsageLimit != nil && d.UsageCount >= *d.UsageLimit {
		return nil, businessRulef("this discount code has reached its usage limit")
	}

	if subtotal < d.MinPurchase {
		return nil, &BelowMinimumError{MinPurchase: d.MinPurchase}
	}

	var amount float64
	switch d.DiscountType {
	case domain.DiscountPercentage:
		amount = subtotal * d.DiscountValue / 100
		if d.MaxDiscount != nil && amount > *d.MaxDiscount {
			amount = *d.MaxDiscount
		}
	case domain.DiscountFixedAmount:
		// Deliberately not clamped to the subtotal; see DESIGN.md.
		amount = d.DiscountValue
	default:
		return nil, businessRulef("unknown discount type %s", d.DiscountType)
	}

	return &DiscountQuote{Discount: d, Amount: amount}, nil
}
