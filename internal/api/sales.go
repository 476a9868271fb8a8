package api

import (
	"net/http"
	"strconv"

	"campuspos/m/internal/pos"
)

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	sales, err := h.pos.ListSales(limit)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

type createSaleRequest struct {
	CustomerID     string         `json:"customer_id"`
	Items          []pos.SaleLine `json:"items"`
	DiscountID     string         `json:"discount_id"`
	DiscountAmount float64        `json:"discount_amount"`
	TaxAmount      float64        `json:"tax_amount"`
	PaymentMethod  string         `json:"payment_method"`
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The cashier is whoever holds the token, never a field in the payload.
	sale, err := h.pos.CreateSale(pos.SaleRequest{
		UserID:         userIDFromContext(r),
		CustomerID:     req.CustomerID,
		Items:          req.Items,
		DiscountID:     req.DiscountID,
		DiscountAmount: req.DiscountAmount,
		TaxAmount:      req.TaxAmount,
		PaymentMethod:  req.PaymentMethod,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sale)
}
