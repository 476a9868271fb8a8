package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"campuspos/m/domain"
	"campuspos/m/internal/pos"
)

const discountColumns = `id, code, name, description, discount_type, discount_value, min_purchase,
    max_discount, start_date, end_date, usage_limit, usage_count, is_active, applicable_for, created_at`

func (h *Handler) listDiscounts(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	activeOnly := r.URL.Query().Get("active") == "true"

	query := `SELECT ` + discountColumns + ` FROM discounts WHERE 1 = 1`
	args := []any{}
	if search != "" {
		like := "%" + search + "%"
		query += ` AND (code LIKE ? OR name LIKE ?)`
		args = append(args, like, like)
	}
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY created_at DESC`

	var discounts []domain.Discount
	if err := h.db.Select(&discounts, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list discounts")
		return
	}
	respondJSON(w, http.StatusOK, discounts)
}

type discountRequest struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	DiscountType  string   `json:"discount_type"`
	DiscountValue float64  `json:"discount_value"`
	MinPurchase   float64  `json:"min_purchase"`
	MaxDiscount   *float64 `json:"max_discount"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	UsageLimit    *int     `json:"usage_limit"`
	IsActive      *bool    `json:"is_active"`
	ApplicableFor string   `json:"applicable_for"`
}

func (h *Handler) createDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Code == "" || req.Name == "" || req.DiscountType == "" || req.StartDate == "" || req.EndDate == "" {
		respondError(w, http.StatusBadRequest, "code, name, discount_type, start_date and end_date are required")
		return
	}
	if req.DiscountType != domain.DiscountPercentage && req.DiscountType != domain.DiscountFixedAmount {
		respondError(w, http.StatusBadRequest, "discount_type must be PERCENTAGE or FIXED_AMOUNT")
		return
	}
	if req.DiscountValue <= 0 {
		respondError(w, http.StatusBadRequest, "discount_value must be positive")
		return
	}
	if req.ApplicableFor == "" {
		req.ApplicableFor = "ALL"
	}
	startDate, err := pos.NormalizeWindowTime(req.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "start_date is not a valid date")
		return
	}
	endDate, err := pos.NormalizeWindowTime(req.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "end_date is not a valid date")
		return
	}

	id := uuid.NewString()
	_, err = h.db.Exec(`INSERT INTO discounts
        (id, code, name, description, discount_type, discount_value, min_purchase, max_discount,
         start_date, end_date, usage_limit, applicable_for)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, strings.ToUpper(strings.TrimSpace(req.Code)), req.Name, nullIfEmpty(req.Description),
		req.DiscountType, req.DiscountValue, req.MinPurchase, req.MaxDiscount,
		startDate, endDate, req.UsageLimit, req.ApplicableFor)
	if isUniqueViolation(err) {
		respondError(w, http.StatusConflict, "discount code already exists")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create discount")
		return
	}

	h.respondDiscount(w, http.StatusCreated, id)
}

func (h *Handler) getDiscount(w http.ResponseWriter, r *http.Request) {
	h.respondDiscount(w, http.StatusOK, chi.URLParam(r, "id"))
}

func (h *Handler) respondDiscount(w http.ResponseWriter, status int, id string) {
	var discount domain.Discount
	err := h.db.Get(&discount, `SELECT `+discountColumns+` FROM discounts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "discount not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load discount")
		return
	}
	respondJSON(w, status, discount)
}

func (h *Handler) updateDiscount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req discountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var discount domain.Discount
	err := h.db.Get(&discount, `SELECT `+discountColumns+` FROM discounts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "discount not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load discount")
		return
	}

	if req.Code != "" {
		discount.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	}
	if req.Name != "" {
		discount.Name = req.Name
	}
	if req.Description != "" {
		discount.Description = nullIfEmpty(req.Description)
	}
	if req.DiscountType != "" {
		if req.DiscountType != domain.DiscountPercentage && req.DiscountType != domain.DiscountFixedAmount {
			respondError(w, http.StatusBadRequest, "discount_type must be PERCENTAGE or FIXED_AMOUNT")
			return
		}
		discount.DiscountType = req.DiscountType
	}
	if req.DiscountValue > 0 {
		discount.DiscountValue = req.DiscountValue
	}
	if req.MinPurchase > 0 {
		discount.MinPurchase = req.MinPurchase
	}
	if req.MaxDiscount != nil {
		discount.MaxDiscount = req.MaxDiscount
	}
	if req.StartDate != "" {
		normalized, err := pos.NormalizeWindowTime(req.StartDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "start_date is not a valid date")
			return
		}
		discount.StartDate = normalized
	}
	if req.EndDate != "" {
		normalized, err := pos.NormalizeWindowTime(req.EndDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "end_date is not a valid date")
			return
		}
		discount.EndDate = normalized
	}
	if req.UsageLimit != nil {
		discount.UsageLimit = req.UsageLimit
	}
	if req.IsActive != nil {
		discount.IsActive = *req.IsActive
	}
	if req.ApplicableFor != "" {
		discount.ApplicableFor = req.ApplicableFor
	}

	_, err = h.db.Exec(`UPDATE discounts SET code = ?, name = ?, description = ?, discount_type = ?,
        discount_value = ?, min_purchase = ?, max_discount = ?, start_date = ?, end_date = ?,
        usage_limit = ?, is_active = ?, applicable_for = ? WHERE id = ?`,
		discount.Code, discount.Name, discount.Description, discount.DiscountType,
		discount.DiscountValue, discount.MinPurchase, discount.MaxDiscount, discount.StartDate,
		discount.EndDate, discount.UsageLimit, discount.IsActive, discount.ApplicableFor, id)
	if isUniqueViolation(err) {
		respondError(w, http.StatusConflict, "discount code already exists")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update discount")
		return
	}

	h.respondDiscount(w, http.StatusOK, id)
}

func (h *Handler) deleteDiscount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var used bool
	if err := h.db.Get(&used, `SELECT EXISTS (SELECT 1 FROM sale_discounts WHERE discount_id = ?)`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete discount")
		return
	}
	if used {
		respondError(w, http.StatusBadRequest,
			"cannot delete discount that has been used in sales; deactivate it instead")
		return
	}
	res, err := h.db.Exec(`DELETE FROM discounts WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete discount")
		return
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		respondError(w, http.StatusNotFound, "discount not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type validateDiscountRequest struct {
	Code        string  `json:"code"`
	Subtotal    float64 `json:"subtotal"`
	TotalAmount float64 `json:"total_amount"`
}

func (h *Handler) validateDiscount(w http.ResponseWriter, r *http.Request) {
	var req validateDiscountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Older clients send the cart amount as total_amount.
	subtotal := req.Subtotal
	if subtotal == 0 {
		subtotal = req.TotalAmount
	}

	quote, err := h.pos.ValidateDiscount(req.Code, subtotal)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"discount": map[string]any{
			"id":              quote.Discount.ID,
			"code":            quote.Discount.Code,
			"name":            quote.Discount.Name,
			"discount_type":   quote.Discount.DiscountType,
			"discount_value":  quote.Discount.DiscountValue,
			"discount_amount": quote.Amount,
		},
	})
}
