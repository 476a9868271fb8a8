package api

import (
	"net/http"
	"strconv"

	"campuspos/m/internal/pos"
)

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	purchases, err := h.pos.ListPurchases(limit)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, purchases)
}

type createPurchaseRequest struct {
	SupplierID string             `json:"supplier_id"`
	Items      []pos.PurchaseLine `json:"items"`
	Notes      string             `json:"notes"`
}

func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	purchase, err := h.pos.CreatePurchase(pos.PurchaseRequest{
		UserID:     userIDFromContext(r),
		SupplierID: req.SupplierID,
		Items:      req.Items,
		Notes:      req.Notes,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, purchase)
}
