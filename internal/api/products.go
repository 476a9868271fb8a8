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
	"campuspos/m/internal/barcode"
)

const productSelect = `SELECT p.id, p.code, p.name, p.description, p.category_id, p.supplier_id,
    p.unit_price, p.stock_level, p.reorder_level, p.barcode, p.is_active, p.created_at, p.updated_at,
    c.name AS category_name, s.company_name AS supplier_name
    FROM products p
    JOIN categories c ON c.id = p.category_id
    JOIN suppliers s ON s.id = p.supplier_id`

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	query := productSelect + ` WHERE p.is_active = 1`
	args := []any{}
	if search != "" {
		like := "%" + search + "%"
		query += ` AND (p.name LIKE ? OR p.code LIKE ?)`
		args = append(args, like, like)
	}
	query += ` ORDER BY p.name`

	var products []domain.Product
	if err := h.db.Select(&products, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

type productRequest struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	CategoryID   string  `json:"category_id"`
	SupplierID   string  `json:"supplier_id"`
	UnitPrice    float64 `json:"unit_price"`
	ReorderLevel int     `json:"reorder_level"`
	StockLevel   *int    `json:"stock_level"`
	IsActive     *bool   `json:"is_active"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Code == "" || req.Name == "" || req.CategoryID == "" || req.SupplierID == "" {
		respondError(w, http.StatusBadRequest, "code, name, category_id and supplier_id are required")
		return
	}
	if req.UnitPrice < 0 {
		respondError(w, http.StatusBadRequest, "unit_price must not be negative")
		return
	}
	reorderLevel := req.ReorderLevel
	if reorderLevel <= 0 {
		reorderLevel = 10
	}

	id := uuid.NewString()
	// New products start at zero stock; stock arrives through purchases.
	_, err := h.db.Exec(`INSERT INTO products
        (id, code, name, description, category_id, supplier_id, unit_price, stock_level, reorder_level)
        VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		id, req.Code, req.Name, nullIfEmpty(req.Description), req.CategoryID, req.SupplierID,
		req.UnitPrice, reorderLevel)
	if isUniqueViolation(err) {
		respondError(w, http.StatusConflict, "product code already exists")
		return
	}
	if err != nil {
		h.log.Error("unable to create product", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to create product")
		return
	}

	h.respondProduct(w, http.StatusCreated, id)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	h.respondProduct(w, http.StatusOK, chi.URLParam(r, "id"))
}

func (h *Handler) respondProduct(w http.ResponseWriter, status int, id string) {
	var product domain.Product
	err := h.db.Get(&product, productSelect+` WHERE p.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load product")
		return
	}
	respondJSON(w, status, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var product domain.Product
	err := h.db.Get(&product, `SELECT id, code, name, description, category_id, supplier_id,
        unit_price, stock_level, reorder_level, barcode, is_active, created_at, updated_at
        FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	if req.Code != "" {
		product.Code = req.Code
	}
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = nullIfEmpty(req.Description)
	}
	if req.CategoryID != "" {
		product.CategoryID = req.CategoryID
	}
	if req.SupplierID != "" {
		product.SupplierID = req.SupplierID
	}
	if req.UnitPrice > 0 {
		product.UnitPrice = req.UnitPrice
	}
	if req.ReorderLevel > 0 {
		product.ReorderLevel = req.ReorderLevel
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	// Administrative stock correction; normal stock movement comes from
	// sales and purchases only.
	if req.StockLevel != nil {
		if *req.StockLevel < 0 {
			respondError(w, http.StatusBadRequest, "stock_level must not be negative")
			return
		}
		product.StockLevel = *req.StockLevel
	}

	_, err = h.db.Exec(`UPDATE products SET code = ?, name = ?, description = ?, category_id = ?,
        supplier_id = ?, unit_price = ?, stock_level = ?, reorder_level = ?, is_active = ?,
        updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		product.Code, product.Name, product.Description, product.CategoryID, product.SupplierID,
		product.UnitPrice, product.StockLevel, product.ReorderLevel, product.IsActive, id)
	if isUniqueViolation(err) {
		respondError(w, http.StatusConflict, "product code already exists")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update product")
		return
	}

	h.respondProduct(w, http.StatusOK, id)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// Deactivate rather than delete so historical sales keep their rows.
	res, err := h.db.Exec(`UPDATE products SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete product")
		return
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Barcode endpoints

func (h *Handler) getBarcode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var product domain.Product
	err := h.db.Get(&product, `SELECT id, code, name, description, category_id, supplier_id,
        unit_price, stock_level, reorder_level, barcode, is_active, created_at, updated_at
        FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	code := ""
	hasBarcode := false
	if product.Barcode != nil && *product.Barcode != "" {
		code = *product.Barcode
		hasBarcode = true
	} else {
		code = barcode.GenerateEAN13(product.ID)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"product_id":   product.ID,
		"product_code": product.Code,
		"product_name": product.Name,
		"barcode":      code,
		"has_barcode":  hasBarcode,
	})
}

type assignBarcodeRequest struct {
	BarcodeType   string `json:"barcode_type"`
	CustomBarcode string `json:"custom_barcode"`
}

func (h *Handler) assignBarcode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req assignBarcodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.BarcodeType == "" {
		req.BarcodeType = "EAN13"
	}

	var product domain.Product
	err := h.db.Get(&product, `SELECT id, code, name, description, category_id, supplier_id,
        unit_price, stock_level, reorder_level, barcode, is_active, created_at, updated_at
        FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	var code string
	if req.CustomBarcode != "" {
		if req.BarcodeType == "EAN13" && !barcode.ValidateEAN13(req.CustomBarcode) {
			respondError(w, http.StatusBadRequest, "invalid EAN-13 barcode format")
			return
		}
		code = req.CustomBarcode
	} else {
		switch req.BarcodeType {
		case "EAN13":
			code = barcode.GenerateEAN13(product.ID)
		case "Code128":
			code = barcode.GenerateCode128(product.Code)
		default:
			respondError(w, http.StatusBadRequest, "invalid barcode type")
			return
		}
	}

	_, err = h.db.Exec(`UPDATE products SET barcode = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, code, id)
	if isUniqueViolation(err) {
		respondError(w, http.StatusConflict, "barcode already assigned to another product")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save barcode")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"product_id": product.ID,
		"barcode":    code,
	})
}

func (h *Handler) bulkAssignBarcodes(w http.ResponseWriter, r *http.Request) {
	var products []domain.Product
	err := h.db.Select(&products, `SELECT id, code, name, description, category_id, supplier_id,
        unit_price, stock_level, reorder_level, barcode, is_active, created_at, updated_at
        FROM products WHERE barcode IS NULL AND is_active = 1`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list products")
		return
	}

	assigned := 0
	skipped := 0
	for _, p := range products {
		code := barcode.GenerateEAN13(p.ID)
		_, err := h.db.Exec(`UPDATE products SET barcode = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, code, p.ID)
		if isUniqueViolation(err) {
			// Identifier digits collided with an existing barcode.
			skipped++
			continue
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to save barcode")
			return
		}
		assigned++
	}

	respondJSON(w, http.StatusOK, map[string]int{"assigned": assigned, "skipped": skipped})
}

func (h *Handler) barcodeLabel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var product domain.Product
	err := h.db.Get(&product, `SELECT id, code, name, description, category_id, supplier_id,
        unit_price, stock_level, reorder_level, barcode, is_active, created_at, updated_at
        FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load product")
		return
	}

	code := barcode.GenerateEAN13(product.ID)
	if product.Barcode != nil && *product.Barcode != "" {
		code = *product.Barcode
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(barcode.LabelHTML(product.Name, product.Code, code, product.UnitPrice)))
}
