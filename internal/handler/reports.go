package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/emberline-pos/api/internal/database"
	"github.com/emberline-pos/api/internal/demo"
)

const topItemsLimit = 10

// ReportsStore defines the database methods needed by sales reports.
type ReportsStore interface {
	GetSalesSummary(ctx context.Context, since time.Time) (database.SalesSummaryRow, error)
	GetSalesByCategory(ctx context.Context, since time.Time) ([]database.CategorySalesRow, error)
	GetTopItems(ctx context.Context, since time.Time, limit int32) ([]database.TopItemRow, error)
}

// ReportsHandler serves the sales report. Requires the "reports"
// capability (enforced by the router).
type ReportsHandler struct {
	store  ReportsStore // nil in demo mode
	logger *slog.Logger
}

// NewReportsHandler creates a new ReportsHandler. store may be nil for
// demo mode.
func NewReportsHandler(store ReportsStore, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{store: store, logger: logger}
}

// RegisterRoutes registers the sales report endpoint.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/sales", h.Sales)
}

// Sales aggregates completed orders for the requested period
// (today/week/month). Falls back to the demo report when the store is
// unreachable.
func (h *ReportsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	since := periodStart(r.URL.Query().Get("period"), time.Now())

	if h.store == nil {
		writeJSON(w, http.StatusOK, demo.Report())
		return
	}

	summary, err := h.store.GetSalesSummary(r.Context(), since)
	if err != nil {
		if database.IsUnavailable(err) {
			h.logger.Warn("reports store unreachable, serving demo report", "error", err)
			writeJSON(w, http.StatusOK, demo.Report())
			return
		}
		h.logger.Error("sales summary", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	byCategory, err := h.store.GetSalesByCategory(r.Context(), since)
	if err != nil {
		h.logger.Error("sales by category", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	topItems, err := h.store.GetTopItems(r.Context(), since, topItemsLimit)
	if err != nil {
		h.logger.Error("top items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	report := demo.SalesReport{
		Summary: demo.ReportSummary{
			TotalSales:    database.NumericDecimal(summary.TotalSales).StringFixed(2),
			TotalOrders:   summary.TotalOrders,
			AvgOrderValue: database.NumericDecimal(summary.AvgOrderValue).StringFixed(2),
		},
		ByCategory: make([]demo.CategoryRevenue, len(byCategory)),
		TopItems:   make([]demo.TopItem, len(topItems)),
	}
	for i, c := range byCategory {
		report.ByCategory[i] = demo.CategoryRevenue{
			Category: c.Category,
			Revenue:  database.NumericDecimal(c.Revenue).StringFixed(2),
		}
	}
	for i, t := range topItems {
		report.TopItems[i] = demo.TopItem{
			Name:         t.Name,
			QuantitySold: t.QuantitySold,
			Revenue:      database.NumericDecimal(t.Revenue).StringFixed(2),
		}
	}

	writeJSON(w, http.StatusOK, report)
}

// periodStart maps a report period to its start time. Unknown values fall
// back to today.
func periodStart(period string, now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case "week":
		return midnight.AddDate(0, 0, -7)
	case "month":
		return midnight.AddDate(0, -1, 0)
	default: // "today"
		return midnight
	}
}
