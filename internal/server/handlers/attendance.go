// Handles attendance recording and queries.

package handlers

import (
	"context"

	apierrors "github.com/academiahq/academia/internal/errors"
	"github.com/academiahq/academia/internal/models"
	"github.com/academiahq/academia/internal/storage"
)

// AttendanceHandler handles attendance requests.
type AttendanceHandler struct {
	attendance *storage.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(attendance *storage.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// CreateAttendanceRequest is one attendance entry.
type CreateAttendanceRequest struct {
	ClassID   string `json:"class_id"`
	StudentID string `json:"student_id"`
	DateTime  string `json:"date_time"`
	Status    string `json:"status"`
}

func (r CreateAttendanceRequest) input() storage.AttendanceInput {
	return storage.AttendanceInput{
		ClassID:   r.ClassID,
		StudentID: r.StudentID,
		DateTime:  r.DateTime,
		Status:    models.AttendanceStatus(r.Status),
	}
}

func (r CreateAttendanceRequest) validate() error {
	if r.ClassID == "" {
		return apierrors.MissingField("class_id")
	}
	if r.StudentID == "" {
		return apierrors.MissingField("student_id")
	}
	if r.Status == "" {
		return apierrors.MissingField("status")
	}
	return nil
}

// Create records one attendance entry.
func (h *AttendanceHandler) Create(ctx context.Context, req CreateAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	record, err := h.attendance.Create(req.input())
	if err != nil {
		return nil, serviceError(err)
	}
	return record, nil
}

// BulkAttendanceRequest carries a batch of attendance entries.
type BulkAttendanceRequest struct {
	Entries []CreateAttendanceRequest `json:"entries"`
}

// AttendanceListResponse wraps a list of attendance records.
type AttendanceListResponse struct {
	Records []models.AttendanceRecord `json:"records"`
}

// CreateBulk records a batch of attendance entries. All entries are validated
// before any is written; a single bad entry fails the whole batch.
func (h *AttendanceHandler) CreateBulk(ctx context.Context, req BulkAttendanceRequest) (*AttendanceListResponse, error) {
	if len(req.Entries) == 0 {
		return nil, apierrors.MissingField("entries")
	}
	inputs := make([]storage.AttendanceInput, len(req.Entries))
	for i, entry := range req.Entries {
		if err := entry.validate(); err != nil {
			return nil, err
		}
		inputs[i] = entry.input()
	}
	records, err := h.attendance.CreateBulk(inputs)
	if err != nil {
		return nil, serviceError(err)
	}
	return &AttendanceListResponse{Records: records}, nil
}

// ClassAttendanceRequest identifies a class and an optional date range.
type ClassAttendanceRequest struct {
	ClassID string `path:"id"`
	From    string `query:"from"`
	To      string `query:"to"`
}

// ListByClass returns the attendance records of one class, optionally
// bounded by from/to dates (YYYY-MM-DD, inclusive).
func (h *AttendanceHandler) ListByClass(ctx context.Context, req ClassAttendanceRequest) (*AttendanceListResponse, error) {
	records, err := h.attendance.ListByClass(req.ClassID, req.From, req.To)
	if err != nil {
		return nil, serviceError(err)
	}
	return &AttendanceListResponse{Records: records}, nil
}
