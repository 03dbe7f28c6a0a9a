// Handles physical evaluations and their chart series.

package handlers

import (
	"context"

	apierrors "github.com/academiahq/academia/internal/errors"
	"github.com/academiahq/academia/internal/models"
	"github.com/academiahq/academia/internal/storage"
)

// EvaluationHandler handles evaluation requests.
type EvaluationHandler struct {
	evaluations *storage.EvaluationService
}

// NewEvaluationHandler creates a new evaluation handler.
func NewEvaluationHandler(evaluations *storage.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// CreateEvaluationRequest is the evaluation creation payload.
type CreateEvaluationRequest struct {
	StudentID    string         `json:"student_id"`
	Date         string         `json:"date"`
	WeightKg     float64        `json:"weight_kg"`
	HeightM      *float64       `json:"height_m"`
	Measurements map[string]any `json:"measurements"`
	Notes        string         `json:"notes"`
}

// Create records a new evaluation. BMI is computed server-side when height
// is present.
func (h *EvaluationHandler) Create(ctx context.Context, req CreateEvaluationRequest) (*models.Evaluation, error) {
	if req.StudentID == "" {
		return nil, apierrors.MissingField("student_id")
	}
	if req.WeightKg <= 0 {
		return nil, apierrors.BadRequest("weight_kg must be positive")
	}
	evaluation, err := h.evaluations.Create(storage.EvaluationInput{
		StudentID:    req.StudentID,
		Date:         req.Date,
		WeightKg:     req.WeightKg,
		HeightM:      req.HeightM,
		Measurements: req.Measurements,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, serviceError(err)
	}
	return evaluation, nil
}

// StudentEvaluationsRequest identifies one student.
type StudentEvaluationsRequest struct {
	StudentID string `path:"id"`
}

// EvaluationListResponse wraps a student's evaluations.
type EvaluationListResponse struct {
	Evaluations []models.Evaluation `json:"evaluations"`
}

// ListByStudent returns a student's evaluations ordered by date.
func (h *EvaluationHandler) ListByStudent(ctx context.Context, req StudentEvaluationsRequest) (*EvaluationListResponse, error) {
	evaluations, err := h.evaluations.ListByStudent(req.StudentID)
	if err != nil {
		return nil, serviceError(err)
	}
	return &EvaluationListResponse{Evaluations: evaluations}, nil
}

// Chart returns the weight and BMI time series for a student.
func (h *EvaluationHandler) Chart(ctx context.Context, req StudentEvaluationsRequest) (*models.ChartData, error) {
	chart, err := h.evaluations.Chart(req.StudentID)
	if err != nil {
		return nil, serviceError(err)
	}
	return chart, nil
}
