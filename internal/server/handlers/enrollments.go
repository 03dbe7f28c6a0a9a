// Handles enrollments linking students to classes.

package handlers

import (
	"context"

	apierrors "github.com/academiahq/academia/internal/errors"
	"github.com/academiahq/academia/internal/models"
	"github.com/academiahq/academia/internal/storage"
)

// EnrollmentHandler handles enrollment requests.
type EnrollmentHandler struct {
	enrollments *storage.EnrollmentService
}

// NewEnrollmentHandler creates a new enrollment handler.
func NewEnrollmentHandler(enrollments *storage.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// ListEnrollmentsRequest has no parameters.
type ListEnrollmentsRequest struct{}

// EnrollmentListResponse wraps a list of enrollments.
type EnrollmentListResponse struct {
	Enrollments []models.Enrollment `json:"enrollments"`
}

// List returns all enrollments.
func (h *EnrollmentHandler) List(ctx context.Context, req ListEnrollmentsRequest) (*EnrollmentListResponse, error) {
	return &EnrollmentListResponse{Enrollments: h.enrollments.List()}, nil
}

// ClassEnrollmentsRequest identifies one class.
type ClassEnrollmentsRequest struct {
	ClassID string `path:"id"`
}

// ListByClass returns the enrollments of one class.
func (h *EnrollmentHandler) ListByClass(ctx context.Context, req ClassEnrollmentsRequest) (*EnrollmentListResponse, error) {
	enrollments, err := h.enrollments.ListByClass(req.ClassID)
	if err != nil {
		return nil, serviceError(err)
	}
	return &EnrollmentListResponse{Enrollments: enrollments}, nil
}

// EnrolledStudentsResponse wraps the students enrolled in a class.
type EnrolledStudentsResponse struct {
	Students []models.Student `json:"students"`
}

// EnrolledStudents returns all students enrolled in one class.
func (h *EnrollmentHandler) EnrolledStudents(ctx context.Context, req ClassEnrollmentsRequest) (*EnrolledStudentsResponse, error) {
	students, err := h.enrollments.EnrolledStudents(req.ClassID)
	if err != nil {
		return nil, serviceError(err)
	}
	return &EnrolledStudentsResponse{Students: students}, nil
}

// StudentEnrollmentsRequest identifies one student.
type StudentEnrollmentsRequest struct {
	StudentID string `path:"id"`
}

// ListByStudent returns the enrollments of one student.
func (h *EnrollmentHandler) ListByStudent(ctx context.Context, req StudentEnrollmentsRequest) (*EnrollmentListResponse, error) {
	enrollments, err := h.enrollments.ListByStudent(req.StudentID)
	if err != nil {
		return nil, serviceError(err)
	}
	return &EnrollmentListResponse{Enrollments: enrollments}, nil
}

// CreateEnrollmentRequest is the enrollment creation payload.
type CreateEnrollmentRequest struct {
	StudentID string `json:"student_id"`
	ClassID   string `json:"class_id"`
}

// Create enrolls a student in a class.
func (h *EnrollmentHandler) Create(ctx context.Context, req CreateEnrollmentRequest) (*models.Enrollment, error) {
	if req.StudentID == "" {
		return nil, apierrors.MissingField("student_id")
	}
	if req.ClassID == "" {
		return nil, apierrors.MissingField("class_id")
	}
	enrollment, err := h.enrollments.Create(req.StudentID, req.ClassID)
	if err != nil {
		return nil, serviceError(err)
	}
	return enrollment, nil
}

// DeleteEnrollmentRequest identifies one enrollment.
type DeleteEnrollmentRequest struct {
	ID string `path:"id"`
}

// DeletedResponse acknowledges a deletion.
type DeletedResponse struct {
	Deleted bool `json:"deleted"`
}

// Delete removes an enrollment by ID.
func (h *EnrollmentHandler) Delete(ctx context.Context, req DeleteEnrollmentRequest) (*DeletedResponse, error) {
	if err := h.enrollments.Delete(req.ID); err != nil {
		return nil, serviceError(err)
	}
	return &DeletedResponse{Deleted: true}, nil
}

// DeleteByPairRequest identifies an enrollment by its student and class.
type DeleteByPairRequest struct {
	StudentID string `path:"sid"`
	ClassID   string `path:"cid"`
}

// DeleteByPair removes the enrollment pairing a student with a class.
func (h *EnrollmentHandler) DeleteByPair(ctx context.Context, req DeleteByPairRequest) (*DeletedResponse, error) {
	if err := h.enrollments.DeleteByStudentAndClass(req.StudentID, req.ClassID); err != nil {
		return nil, serviceError(err)
	}
	return &DeletedResponse{Deleted: true}, nil
}
