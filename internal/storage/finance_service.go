package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/academiahq/academia/internal/docstore"
	"github.com/academiahq/academia/internal/models"
)

// FinanceInput is the caller-supplied part of a finance entry. DateTime
// defaults to the current time when empty.
type FinanceInput struct {
	DateTime    string
	Type        models.FinanceType
	Amount      float64
	Category    string
	Description string
	CreatedBy   string
}

// FinanceService manages the finance collection.
type FinanceService struct {
	store *docstore.Store
	now   func() time.Time
}

// NewFinanceService creates a new finance service.
func NewFinanceService(store *docstore.Store) *FinanceService {
	return &FinanceService{store: store, now: time.Now}
}

// List returns all finance entries in insertion order.
func (s *FinanceService) List() []models.FinanceEntry {
	return decodeRows[models.FinanceEntry](s.store.Read(ColFinance))
}

// ListByDate returns the entries dated on the given day. An empty or
// unparseable date means today. The normalized day is returned alongside.
func (s *FinanceService) ListByDate(date string) ([]models.FinanceEntry, string) {
	day := NormalizeDate(date, s.now)
	entries := make([]models.FinanceEntry, 0)
	for _, entry := range s.List() {
		if datePart(entry.DateTime) == day {
			entries = append(entries, entry)
		}
	}
	return entries, day
}

// Create adds a finance entry.
func (s *FinanceService) Create(in FinanceInput) (*models.FinanceEntry, error) {
	kind := models.FinanceType(strings.ToLower(string(in.Type)))
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid finance type %q", in.Type)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	dateTime := in.DateTime
	if dateTime == "" {
		dateTime = s.now().Format(time.RFC3339)
	}
	entry := models.FinanceEntry{
		ID:          newID(),
		DateTime:    dateTime,
		Type:        kind,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		CreatedBy:   in.CreatedBy,
	}

	rows := append(s.List(), entry)
	if _, err := s.store.Write(ColFinance, toRecords(rows)); err != nil {
		return nil, fmt.Errorf("failed to persist finance entry: %w: %w", ErrPersist, err)
	}
	return &entry, nil
}

// Aggregate sums one day's entries into income, expense and balance.
func (s *FinanceService) Aggregate(date string) (models.FinanceSummary, string) {
	entries, day := s.ListByDate(date)
	var summary models.FinanceSummary
	for _, entry := range entries {
		switch entry.Type {
		case models.FinanceIncome:
			summary.TotalIncome += entry.Amount
		case models.FinanceExpense:
			summary.TotalExpense += entry.Amount
		}
	}
	summary.TotalIncome = round2(summary.TotalIncome)
	summary.TotalExpense = round2(summary.TotalExpense)
	summary.Balance = round2(summary.TotalIncome - summary.TotalExpense)
	return summary, day
}
