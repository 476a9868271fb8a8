package pos

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Counter names in doc_counters.
const (
	counterSale     = "sale"
	counterPurchase = "purchase"
	counterCustomer = "customer"
)

// nextSequence atomically increments the named counter and returns the new
// value. Run inside the transaction that consumes the number so a rollback
// releases no duplicate-prone gap into concurrent writers.
func nextSequence(q sqlx.Queryer, name string) (int64, error) {
	var seq int64
	err := sqlx.Get(q, &seq, `INSERT INTO doc_counters (name, value) VALUES (?, 1)
        ON CONFLICT(name) DO UPDATE SET value = value + 1
        RETURNING value`, name)
	if err != nil {
		return 0, fmt.Errorf("increment %s counter: %w", name, err)
	}
	return seq, nil
}

// documentNumber formats a dated sequential identifier, e.g. SALE-20250131-0001.
func documentNumber(prefix string, seq int64, at time.Time) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, at.UTC().Format("20060102"), seq)
}

// NewCustomerNumber reserves the next customer number (CUST-000001).
func (s *Service) NewCustomerNumber() (string, error) {
	seq, err := nextSequence(s.db, counterCustomer)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CUST-%06d", seq), nil
}
