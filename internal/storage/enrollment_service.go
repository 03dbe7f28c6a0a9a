package storage

import (
	"fmt"
	"time"

	"github.com/academiahq/academia/internal/docstore"
	"github.com/academiahq/academia/internal/models"
)

// EnrollmentService manages the enrollments collection, linking students to
// classes.
type EnrollmentService struct {
	store    *docstore.Store
	students *StudentService
	classes  *ClassService
	now      func() time.Time
}

// NewEnrollmentService creates a new enrollment service.
func NewEnrollmentService(store *docstore.Store, students *StudentService, classes *ClassService) *EnrollmentService {
	return &EnrollmentService{store: store, students: students, classes: classes, now: time.Now}
}

// List returns all enrollments in insertion order.
func (s *EnrollmentService) List() []models.Enrollment {
	return decodeRows[models.Enrollment](s.store.Read(ColEnrollments))
}

// ListByClass returns the enrollments of one class.
func (s *EnrollmentService) ListByClass(classID string) ([]models.Enrollment, error) {
	if !s.classes.Exists(classID) {
		return nil, fmt.Errorf("class %s: %w", classID, ErrNotFound)
	}
	out := make([]models.Enrollment, 0)
	for _, e := range s.List() {
		if e.ClassID == classID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListByStudent returns the enrollments of one student.
func (s *EnrollmentService) ListByStudent(studentID string) ([]models.Enrollment, error) {
	if !s.students.Exists(studentID) {
		return nil, fmt.Errorf("student %s: %w", studentID, ErrNotFound)
	}
	out := make([]models.Enrollment, 0)
	for _, e := range s.List() {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

// EnrolledStudents returns the students enrolled in a class.
func (s *EnrollmentService) EnrolledStudents(classID string) ([]models.Student, error) {
	enrollments, err := s.ListByClass(classID)
	if err != nil {
		return nil, err
	}
	students := make([]models.Student, 0, len(enrollments))
	for _, e := range enrollments {
		if student, err := s.students.Get(e.StudentID); err == nil {
			students = append(students, *student)
		}
	}
	return students, nil
}

// IsEnrolled reports whether the student is already enrolled in the class.
func (s *EnrollmentService) IsEnrolled(studentID, classID string) bool {
	for _, e := range s.List() {
		if e.StudentID == studentID && e.ClassID == classID {
			return true
		}
	}
	return false
}

// Create enrolls a student in a class. Both sides must exist and the pair
// must not already be enrolled.
func (s *EnrollmentService) Create(studentID, classID string) (*models.Enrollment, error) {
	if !s.classes.Exists(classID) {
		return nil, fmt.Errorf("class %s: %w", classID, ErrNotFound)
	}
	if !s.students.Exists(studentID) {
		return nil, fmt.Errorf("student %s: %w", studentID, ErrNotFound)
	}
	if s.IsEnrolled(studentID, classID) {
		return nil, fmt.Errorf("%w: student %s already enrolled in class %s", ErrExists, studentID, classID)
	}

	enrollment := models.Enrollment{
		ID:        newID(),
		ClassID:   classID,
		StudentID: studentID,
		CreatedAt: s.now().Format(time.RFC3339),
	}

	rows := append(s.List(), enrollment)
	if _, err := s.store.Write(ColEnrollments, toRecords(rows)); err != nil {
		return nil, fmt.Errorf("failed to persist enrollment: %w: %w", ErrPersist, err)
	}
	return &enrollment, nil
}

// Delete removes an enrollment by ID. Returns ErrNotFound when absent.
func (s *EnrollmentService) Delete(id string) error {
	rows := s.List()
	kept := make([]models.Enrollment, 0, len(rows))
	found := false
	for _, e := range rows {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return fmt.Errorf("enrollment %s: %w", id, ErrNotFound)
	}
	if _, err := s.store.Write(ColEnrollments, toRecords(kept)); err != nil {
		return fmt.Errorf("failed to persist enrollments: %w: %w", ErrPersist, err)
	}
	return nil
}

// DeleteByStudentAndClass removes the enrollment pairing a student with a
// class. Returns ErrNotFound when no such pairing exists.
func (s *EnrollmentService) DeleteByStudentAndClass(studentID, classID string) error {
	rows := s.List()
	kept := make([]models.Enrollment, 0, len(rows))
	found := false
	for _, e := range rows {
		if e.StudentID == studentID && e.ClassID == classID {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return fmt.Errorf("enrollment for student %s in class %s: %w", studentID, classID, ErrNotFound)
	}
	if _, err := s.store.Write(ColEnrollments, toRecords(kept)); err != nil {
		return fmt.Errorf("failed to persist enrollments: %w: %w", ErrPersist, err)
	}
	return nil
}
