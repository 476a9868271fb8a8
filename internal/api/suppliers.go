package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"campuspos/m/domain"
)

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	var suppliers []domain.Supplier
	err := h.db.Select(&suppliers, `SELECT id, company_name, contact_person, email, phone, address,
        is_active, created_at FROM suppliers WHERE is_active = 1 ORDER BY company_name`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list suppliers")
		return
	}
	respondJSON(w, http.StatusOK, suppliers)
}

type supplierRequest struct {
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.CompanyName == "" || req.ContactPerson == "" || req.Phone == "" {
		respondError(w, http.StatusBadRequest, "company_name, contact_person and phone are required")
		return
	}

	id := uuid.NewString()
	_, err := h.db.Exec(`INSERT INTO suppliers (id, company_name, contact_person, email, phone, address)
        VALUES (?, ?, ?, ?, ?, ?)`,
		id, req.CompanyName, req.ContactPerson, nullIfEmpty(req.Email), req.Phone, nullIfEmpty(req.Address))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create supplier")
		return
	}

	var supplier domain.Supplier
	if err := h.db.Get(&supplier, `SELECT id, company_name, contact_person, email, phone, address,
        is_active, created_at FROM suppliers WHERE id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load supplier")
		return
	}
	respondJSON(w, http.StatusCreated, supplier)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req supplierRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var supplier domain.Supplier
	err := h.db.Get(&supplier, `SELECT id, company_name, contact_person, email, phone, address,
        is_active, created_at FROM suppliers WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "supplier not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load supplier")
		return
	}

	if req.CompanyName != "" {
		supplier.CompanyName = req.CompanyName
	}
	if req.ContactPerson != "" {
		supplier.ContactPerson = req.ContactPerson
	}
	if req.Email != "" {
		supplier.Email = nullIfEmpty(req.Email)
	}
	if req.Phone != "" {
		supplier.Phone = req.Phone
	}
	if req.Address != "" {
		supplier.Address = nullIfEmpty(req.Address)
	}

	_, err = h.db.Exec(`UPDATE suppliers SET company_name = ?, contact_person = ?, email = ?,
        phone = ?, address = ? WHERE id = ?`,
		supplier.CompanyName, supplier.ContactPerson, supplier.Email, supplier.Phone, supplier.Address, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update supplier")
		return
	}
	respondJSON(w, http.StatusOK, supplier)
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// Products and purchase history keep referencing the supplier, so
	// deletion is a deactivation.
	res, err := h.db.Exec(`UPDATE suppliers SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete supplier")
		return
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		respondError(w, http.StatusNotFound, "supplier not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) supplierHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var exists bool
	if err := h.db.Get(&exists, `SELECT EXISTS (SELECT 1 FROM suppliers WHERE id = ?)`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load supplier")
		return
	}
	if !exists {
		respondError(w, http.StatusNotFound, "supplier not found")
		return
	}

	var purchases []domain.Purchase
	err := h.db.Select(&purchases, `SELECT p.id, p.purchase_number, p.user_id, p.supplier_id,
        p.total_amount, p.notes, p.created_at, u.full_name AS clerk_name, s.company_name AS supplier_name
        FROM purchases p
        JOIN users u ON u.id = p.user_id
        JOIN suppliers s ON s.id = p.supplier_id
        WHERE p.supplier_id = ?
        ORDER BY p.created_at DESC`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load purchase history")
		return
	}
	respondJSON(w, http.StatusOK, purchases)
}
