package api

import (
	"net/http"
	"time"

	"campuspos/m/domain"
)

func (h *Handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	var totalProducts, lowStock int
	if err := h.db.Get(&totalProducts, `SELECT COUNT(*) FROM products WHERE is_active = 1`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stats")
		return
	}
	if err := h.db.Get(&lowStock, `SELECT COUNT(*) FROM products
        WHERE is_active = 1 AND stock_level <= reorder_level`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stats")
		return
	}

	var today struct {
		Revenue float64 `db:"revenue"`
		Count   int     `db:"count"`
	}
	err := h.db.Get(&today, `SELECT COALESCE(SUM(net_amount), 0) AS revenue, COUNT(*) AS count
        FROM sales WHERE DATE(created_at) = DATE('now')`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stats")
		return
	}

	recentSales, err := h.pos.ListSales(10)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	var lowStockItems []domain.Product
	err = h.db.Select(&lowStockItems, productSelect+`
        WHERE p.is_active = 1 AND p.stock_level <= p.reorder_level
        ORDER BY p.stock_level ASC LIMIT 10`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_products":  totalProducts,
		"low_stock_count": lowStock,
		"today_revenue":   today.Revenue,
		"today_sales":     today.Count,
		"recent_sales":    recentSales,
		"low_stock_items": lowStockItems,
	})
}

// periodStart maps a report period to its inclusive start time.
func periodStart(period string, now time.Time) time.Time {
	switch period {
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, -1, 0)
	default: // today
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
}

func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "today"
	}
	start := periodStart(period, time.Now().UTC()).Format("2006-01-02 15:04:05")

	var summary struct {
		Count    int     `db:"count"`
		Total    float64 `db:"total"`
		Discount float64 `db:"discount"`
		Tax      float64 `db:"tax"`
		Net      float64 `db:"net"`
	}
	err := h.db.Get(&summary, `SELECT COUNT(*) AS count,
        COALESCE(SUM(total_amount), 0) AS total,
        COALESCE(SUM(discount_amount), 0) AS discount,
        COALESCE(SUM(tax_amount), 0) AS tax,
        COALESCE(SUM(net_amount), 0) AS net
        FROM sales WHERE created_at >= ?`, start)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load summary")
		return
	}

	type dayRow struct {
		Day     string  `db:"day"`
		Count   int     `db:"count"`
		Revenue float64 `db:"revenue"`
	}
	var days []dayRow
	err = h.db.Select(&days, `SELECT DATE(created_at) AS day, COUNT(*) AS count,
        COALESCE(SUM(net_amount), 0) AS revenue
        FROM sales WHERE created_at >= ?
        GROUP BY DATE(created_at) ORDER BY day`, start)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load summary")
		return
	}

	salesByDay := make(map[string]map[string]any, len(days))
	for _, d := range days {
		salesByDay[d.Day] = map[string]any{"count": d.Count, "revenue": d.Revenue}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"period":         period,
		"sales_count":    summary.Count,
		"total_amount":   summary.Total,
		"total_discount": summary.Discount,
		"total_tax":      summary.Tax,
		"net_revenue":    summary.Net,
		"sales_by_day":   salesByDay,
	})
}

type productPerformance struct {
	ProductID   string  `db:"product_id" json:"product_id"`
	ProductCode string  `db:"product_code" json:"product_code"`
	ProductName string  `db:"product_name" json:"product_name"`
	UnitsSold   int     `db:"units_sold" json:"units_sold"`
	Revenue     float64 `db:"revenue" json:"revenue"`
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	const performanceQuery = `SELECT si.product_id, p.code AS product_code, p.name AS product_name,
        SUM(si.quantity) AS units_sold, SUM(si.subtotal) AS revenue
        FROM sale_items si
        JOIN products p ON p.id = si.product_id
        GROUP BY si.product_id, p.code, p.name`

	var top []productPerformance
	err := h.db.Select(&top, performanceQuery+` ORDER BY units_sold DESC LIMIT 10`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load top products")
		return
	}

	// Slow movers start from the catalog so never-sold products rank too.
	var slow []productPerformance
	err = h.db.Select(&slow, `SELECT p.id AS product_id, p.code AS product_code, p.name AS product_name,
        COALESCE(SUM(si.quantity), 0) AS units_sold, COALESCE(SUM(si.subtotal), 0) AS revenue
        FROM products p
        LEFT JOIN sale_items si ON si.product_id = p.id
        WHERE p.is_active = 1
        GROUP BY p.id, p.code, p.name
        HAVING COALESCE(SUM(si.quantity), 0) < 5
        ORDER BY units_sold ASC, p.name LIMIT 10`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load top products")
		return
	}

	if top == nil {
		top = []productPerformance{}
	}
	if slow == nil {
		slow = []productPerformance{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"top_products": top,
		"slow_movers":  slow,
	})
}

func (h *Handler) inventoryStatus(w http.ResponseWriter, r *http.Request) {
	var status struct {
		TotalProducts int     `db:"total_products"`
		LowStock      int     `db:"low_stock"`
		OutOfStock    int     `db:"out_of_stock"`
		TotalValue    float64 `db:"total_value"`
	}
	err := h.db.Get(&status, `SELECT COUNT(*) AS total_products,
        COALESCE(SUM(CASE WHEN stock_level <= reorder_level AND stock_level > 0 THEN 1 ELSE 0 END), 0) AS low_stock,
        COALESCE(SUM(CASE WHEN stock_level = 0 THEN 1 ELSE 0 END), 0) AS out_of_stock,
        COALESCE(SUM(stock_level * unit_price), 0) AS total_value
        FROM products WHERE is_active = 1`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load inventory status")
		return
	}

	type categoryRow struct {
		Category string  `db:"category" json:"category"`
		Products int     `db:"products" json:"products"`
		Units    int     `db:"units" json:"units"`
		Value    float64 `db:"value" json:"value"`
	}
	var byCategory []categoryRow
	err = h.db.Select(&byCategory, `SELECT c.name AS category, COUNT(*) AS products,
        COALESCE(SUM(p.stock_level), 0) AS units,
        COALESCE(SUM(p.stock_level * p.unit_price), 0) AS value
        FROM products p
        JOIN categories c ON c.id = p.category_id
        WHERE p.is_active = 1
        GROUP BY c.name ORDER BY c.name`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load inventory status")
		return
	}
	if byCategory == nil {
		byCategory = []categoryRow{}
	}

	var outOfStock []domain.Product
	err = h.db.Select(&outOfStock, productSelect+`
        WHERE p.is_active = 1 AND p.stock_level = 0 ORDER BY p.name`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load inventory status")
		return
	}
	if outOfStock == nil {
		outOfStock = []domain.Product{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_products":        status.TotalProducts,
		"low_stock_count":       status.LowStock,
		"out_of_stock_count":    status.OutOfStock,
		"total_inventory_value": status.TotalValue,
		"stock_by_category":     byCategory,
		"out_of_stock_items":    outOfStock,
	})
}

func (h *Handler) profitLoss(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "month"
	}
	start := periodStart(period, time.Now().UTC()).Format("2006-01-02 15:04:05")

	var revenue, cost float64
	if err := h.db.Get(&revenue, `SELECT COALESCE(SUM(net_amount), 0) FROM sales
        WHERE created_at >= ?`, start); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load report")
		return
	}
	if err := h.db.Get(&cost, `SELECT COALESCE(SUM(total_amount), 0) FROM purchases
        WHERE created_at >= ?`, start); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load report")
		return
	}

	grossProfit := revenue - cost
	margin := 0.0
	if revenue > 0 {
		margin = grossProfit / revenue * 100
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"period":        period,
		"revenue":       revenue,
		"purchase_cost": cost,
		"gross_profit":  grossProfit,
		"margin_pct":    margin,
	})
}
