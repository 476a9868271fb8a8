package domain

// User roles.
const (
	RoleAdmin          = "ADMIN"
	RoleCashier        = "CASHIER"
	RoleInventoryClerk = "INVENTORY_CLERK"
)

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleCashier, RoleInventoryClerk:
		return true
	}
	return false
}

type User struct {
	ID        string `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	Password  string `db:"password" json:"password,omitempty"`
	FullName  string `db:"full_name" json:"full_name"`
	Role      string `db:"role" json:"role"`
	IsActive  bool   `db:"is_active" json:"is_active"`
	CreatedAt string `db:"created_at" json:"created_at"`
}
