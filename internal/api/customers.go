package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"campuspos/m/domain"
)

const customerSelect = `SELECT c.id, c.customer_number, c.name, c.email, c.phone, c.address,
    c.date_of_birth, c.customer_type, c.loyalty_points, c.store_credit, c.notes, c.created_at,
    (SELECT COUNT(*) FROM sales s WHERE s.customer_id = c.id) AS sales_count
    FROM customers c`

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	custType := strings.TrimSpace(r.URL.Query().Get("type"))

	query := customerSelect + ` WHERE 1 = 1`
	args := []any{}
	if search != "" {
		like := "%" + search + "%"
		query += ` AND (c.name LIKE ? OR c.email LIKE ? OR c.phone LIKE ? OR c.customer_number LIKE ?)`
		args = append(args, like, like, like, like)
	}
	if custType != "" {
		query += ` AND c.customer_type = ?`
		args = append(args, custType)
	}
	query += ` ORDER BY c.name`

	var customers []domain.Customer
	if err := h.db.Select(&customers, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list customers")
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

type customerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	DateOfBirth  string `json:"date_of_birth"`
	CustomerType string `json:"customer_type"`
	Notes        string `json:"notes"`
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.CustomerType == "" {
		req.CustomerType = domain.CustomerRegular
	}
	if !domain.ValidCustomerType(req.CustomerType) {
		respondError(w, http.StatusBadRequest, "customer_type must be REGULAR, VIP or WHOLESALE")
		return
	}

	number, err := h.pos.NewCustomerNumber()
	if err != nil {
		h.log.Error("unable to allocate customer number", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to create customer")
		return
	}

	id := uuid.NewString()
	_, err = h.db.Exec(`INSERT INTO customers
        (id, customer_number, name, email, phone, address, date_of_birth, customer_type, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, number, req.Name, nullIfEmpty(req.Email), nullIfEmpty(req.Phone),
		nullIfEmpty(req.Address), nullIfEmpty(req.DateOfBirth), req.CustomerType, nullIfEmpty(req.Notes))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create customer")
		return
	}

	h.respondCustomer(w, http.StatusCreated, id)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	h.respondCustomer(w, http.StatusOK, chi.URLParam(r, "id"))
}

func (h *Handler) respondCustomer(w http.ResponseWriter, status int, id string) {
	var customer domain.Customer
	err := h.db.Get(&customer, customerSelect+` WHERE c.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "customer not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load customer")
		return
	}
	respondJSON(w, status, customer)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var customer domain.Customer
	err := h.db.Get(&customer, `SELECT id, customer_number, name, email, phone, address,
        date_of_birth, customer_type, loyalty_points, store_credit, notes, created_at
        FROM customers WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "customer not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load customer")
		return
	}

	if req.Name != "" {
		customer.Name = req.Name
	}
	if req.Email != "" {
		customer.Email = nullIfEmpty(req.Email)
	}
	if req.Phone != "" {
		customer.Phone = nullIfEmpty(req.Phone)
	}
	if req.Address != "" {
		customer.Address = nullIfEmpty(req.Address)
	}
	if req.DateOfBirth != "" {
		customer.DateOfBirth = nullIfEmpty(req.DateOfBirth)
	}
	if req.Notes != "" {
		customer.Notes = nullIfEmpty(req.Notes)
	}
	if req.CustomerType != "" {
		if !domain.ValidCustomerType(req.CustomerType) {
			respondError(w, http.StatusBadRequest, "customer_type must be REGULAR, VIP or WHOLESALE")
			return
		}
		customer.CustomerType = req.CustomerType
	}

	_, err = h.db.Exec(`UPDATE customers SET name = ?, email = ?, phone = ?, address = ?,
        date_of_birth = ?, customer_type = ?, notes = ? WHERE id = ?`,
		customer.Name, customer.Email, customer.Phone, customer.Address,
		customer.DateOfBirth, customer.CustomerType, customer.Notes, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update customer")
		return
	}

	h.respondCustomer(w, http.StatusOK, id)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var used bool
	if err := h.db.Get(&used, `SELECT EXISTS (SELECT 1 FROM sales WHERE customer_id = ?)`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete customer")
		return
	}
	if used {
		respondError(w, http.StatusBadRequest, "cannot delete a customer with recorded sales")
		return
	}
	res, err := h.db.Exec(`DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete customer")
		return
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		respondError(w, http.StatusNotFound, "customer not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
