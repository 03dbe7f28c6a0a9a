// Handles the daily dashboard summary.

package handlers

import (
	"context"

	"github.com/academiahq/academia/internal/models"
	"github.com/academiahq/academia/internal/storage"
)

// DashboardHandler handles dashboard requests.
type DashboardHandler struct {
	dashboard *storage.DashboardService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboard *storage.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// DashboardRequest selects a day, defaulting to today.
type DashboardRequest struct {
	Date string `query:"date"`
}

// Summary returns the aggregate view for one day.
func (h *DashboardHandler) Summary(ctx context.Context, req DashboardRequest) (*models.DashboardSummary, error) {
	summary := h.dashboard.Summary(req.Date)
	return &summary, nil
}
