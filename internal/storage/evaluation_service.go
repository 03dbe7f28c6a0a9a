package storage

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/academiahq/academia/internal/docstore"
	"github.com/academiahq/academia/internal/models"
)

// EvaluationInput is the caller-supplied part of an evaluation. Date
// defaults to today when empty.
type EvaluationInput struct {
	StudentID    string
	Date         string
	WeightKg     float64
	HeightM      *float64
	Measurements map[string]any
	Notes        string
}

// EvaluationService manages the evaluations collection.
type EvaluationService struct {
	store    *docstore.Store
	students *StudentService
	now      func() time.Time
}

// NewEvaluationService creates a new evaluation service.
func NewEvaluationService(store *docstore.Store, students *StudentService) *EvaluationService {
	return &EvaluationService{store: store, students: students, now: time.Now}
}

// ListByStudent returns a student's evaluations sorted by date ascending.
func (s *EvaluationService) ListByStudent(studentID string) ([]models.Evaluation, error) {
	if !s.students.Exists(studentID) {
		return nil, fmt.Errorf("student %s: %w", studentID, ErrNotFound)
	}

	evaluations := make([]models.Evaluation, 0)
	for _, ev := range decodeRows[models.Evaluation](s.store.Read(ColEvaluations)) {
		if ev.StudentID == studentID {
			evaluations = append(evaluations, ev)
		}
	}
	sort.SliceStable(evaluations, func(i, j int) bool {
		return evaluations[i].Date < evaluations[j].Date
	})
	return evaluations, nil
}

// Create adds an evaluation, computing BMI from weight and height.
func (s *EvaluationService) Create(in EvaluationInput) (*models.Evaluation, error) {
	if !s.students.Exists(in.StudentID) {
		return nil, fmt.Errorf("student %s: %w", in.StudentID, ErrNotFound)
	}
	if in.WeightKg <= 0 {
		return nil, fmt.Errorf("weight must be positive")
	}

	evaluation := models.Evaluation{
		ID:           newID(),
		StudentID:    in.StudentID,
		Date:         NormalizeDate(in.Date, s.now),
		WeightKg:     in.WeightKg,
		HeightM:      in.HeightM,
		Measurements: in.Measurements,
		Notes:        in.Notes,
		BMI:          CalculateBMI(in.WeightKg, in.HeightM),
	}

	rows := append(decodeRows[models.Evaluation](s.store.Read(ColEvaluations)), evaluation)
	if _, err := s.store.Write(ColEvaluations, toRecords(rows)); err != nil {
		return nil, fmt.Errorf("failed to persist evaluation: %w: %w", ErrPersist, err)
	}
	return &evaluation, nil
}

// Chart returns the date-ordered series backing a student's progress chart.
func (s *EvaluationService) Chart(studentID string) (*models.ChartData, error) {
	evaluations, err := s.ListByStudent(studentID)
	if err != nil {
		return nil, err
	}

	chart := &models.ChartData{
		Labels:  make([]string, 0, len(evaluations)),
		Weights: make([]float64, 0, len(evaluations)),
		BMI:     make([]*float64, 0, len(evaluations)),
	}
	for _, ev := range evaluations {
		chart.Labels = append(chart.Labels, ev.Date)
		chart.Weights = append(chart.Weights, ev.WeightKg)
		chart.BMI = append(chart.BMI, ev.BMI)
	}
	return chart, nil
}

// CalculateBMI computes the body mass index weight/height², rounded to two
// decimals. It returns nil when either input is missing or non-positive.
func CalculateBMI(weightKg float64, heightM *float64) *float64 {
	if heightM == nil || *heightM <= 0 || weightKg <= 0 {
		return nil
	}
	bmi := round2(weightKg / (*heightM * *heightM))
	return &bmi
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
