package storage

import (
	"fmt"
	"time"

	"github.com/academiahq/academia/internal/docstore"
	"github.com/academiahq/academia/internal/models"
)

// StudentService manages the students collection.
type StudentService struct {
	store *docstore.Store
	now   func() time.Time
}

// NewStudentService creates a new student service.
func NewStudentService(store *docstore.Store) *StudentService {
	return &StudentService{store: store, now: time.Now}
}

// List returns all students in insertion order.
func (s *StudentService) List() []models.Student {
	return decodeRows[models.Student](s.store.Read(ColStudents))
}

// Get retrieves a student by ID.
func (s *StudentService) Get(id string) (*models.Student, error) {
	for _, student := range s.List() {
		if student.ID == id {
			return &student, nil
		}
	}
	return nil, fmt.Errorf("student %s: %w", id, ErrNotFound)
}

// Exists reports whether a student with the given ID exists.
func (s *StudentService) Exists(id string) bool {
	_, err := s.Get(id)
	return err == nil
}

// Create adds a new student.
func (s *StudentService) Create(name, birthdate, phone string) (*models.Student, error) {
	if name == "" {
		return nil, fmt.Errorf("student name is required")
	}

	student := models.Student{
		ID:        newID(),
		Name:      name,
		Birthdate: birthdate,
		Phone:     phone,
		CreatedAt: s.now().Format(time.RFC3339),
	}

	rows := append(s.List(), student)
	if _, err := s.store.Write(ColStudents, toRecords(rows)); err != nil {
		return nil, fmt.Errorf("failed to persist student: %w: %w", ErrPersist, err)
	}
	return &student, nil
}
