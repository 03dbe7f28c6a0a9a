// Handles finance entries and the daily closing summary.

package handlers

import (
	"context"

	apierrors "github.com/academiahq/academia/internal/errors"
	"github.com/academiahq/academia/internal/models"
	"github.com/academiahq/academia/internal/storage"
)

// FinanceHandler handles finance requests.
type FinanceHandler struct {
	finance *storage.FinanceService
}

// NewFinanceHandler creates a new finance handler.
func NewFinanceHandler(finance *storage.FinanceService) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

// CreateFinanceRequest is the finance entry creation payload.
type CreateFinanceRequest struct {
	DateTime    string  `json:"date_time"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	CreatedBy   string  `json:"created_by"`
}

// Create records an income or expense entry.
func (h *FinanceHandler) Create(ctx context.Context, req CreateFinanceRequest) (*models.FinanceEntry, error) {
	if req.Type == "" {
		return nil, apierrors.MissingField("type")
	}
	entry, err := h.finance.Create(storage.FinanceInput{
		DateTime:    req.DateTime,
		Type:        models.FinanceType(req.Type),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return nil, serviceError(err)
	}
	return entry, nil
}

// FinanceSummaryRequest selects a day, defaulting to today.
type FinanceSummaryRequest struct {
	Date string `query:"date"`
}

// FinanceSummaryResponse lists a day's entries with aggregated totals.
type FinanceSummaryResponse struct {
	Date         string                `json:"date"`
	Entries      []models.FinanceEntry `json:"entries"`
	TotalIncome  float64               `json:"total_income"`
	TotalExpense float64               `json:"total_expense"`
	Balance      float64               `json:"balance"`
}

// Summary returns the entries and totals for one day.
func (h *FinanceHandler) Summary(ctx context.Context, req FinanceSummaryRequest) (*FinanceSummaryResponse, error) {
	entries, day := h.finance.ListByDate(req.Date)
	summary, _ := h.finance.Aggregate(req.Date)
	return &FinanceSummaryResponse{
		Date:         day,
		Entries:      entries,
		TotalIncome:  summary.TotalIncome,
		TotalExpense: summary.TotalExpense,
		Balance:      summary.Balance,
	}, nil
}
