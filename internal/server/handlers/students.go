// Handles the student roster.

package handlers

import (
	"context"

	apierrors "github.com/academiahq/academia/internal/errors"
	"github.com/academiahq/academia/internal/models"
	"github.com/academiahq/academia/internal/storage"
)

// StudentHandler handles student CRUD requests.
type StudentHandler struct {
	students *storage.StudentService
}

// NewStudentHandler creates a new student handler.
func NewStudentHandler(students *storage.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// ListStudentsRequest has no parameters.
type ListStudentsRequest struct{}

// StudentListResponse wraps the full roster.
type StudentListResponse struct {
	Students []models.Student `json:"students"`
}

// List returns all students.
func (h *StudentHandler) List(ctx context.Context, req ListStudentsRequest) (*StudentListResponse, error) {
	return &StudentListResponse{Students: h.students.List()}, nil
}

// GetStudentRequest identifies one student.
type GetStudentRequest struct {
	ID string `path:"id"`
}

// Get returns a single student by ID.
func (h *StudentHandler) Get(ctx context.Context, req GetStudentRequest) (*models.Student, error) {
	student, err := h.students.Get(req.ID)
	if err != nil {
		return nil, serviceError(err)
	}
	return student, nil
}

// CreateStudentRequest is the student creation payload.
type CreateStudentRequest struct {
	Name      string `json:"name"`
	Birthdate string `json:"birthdate"`
	Phone     string `json:"phone"`
}

// Create registers a new student.
func (h *StudentHandler) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if req.Name == "" {
		return nil, apierrors.MissingField("name")
	}
	student, err := h.students.Create(req.Name, req.Birthdate, req.Phone)
	if err != nil {
		return nil, serviceError(err)
	}
	return student, nil
}
