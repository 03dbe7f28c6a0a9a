package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/academiahq/academia/internal/docstore"
	"github.com/academiahq/academia/internal/models"
)

// AttendanceInput is the caller-supplied part of an attendance record.
// DateTime defaults to the current time when empty.
type AttendanceInput struct {
	ClassID   string
	StudentID string
	DateTime  string
	Status    models.AttendanceStatus
}

// AttendanceService manages the attendance collection.
type AttendanceService struct {
	store    *docstore.Store
	students *StudentService
	classes  *ClassService
	now      func() time.Time
}

// NewAttendanceService creates a new attendance service.
func NewAttendanceService(store *docstore.Store, students *StudentService, classes *ClassService) *AttendanceService {
	return &AttendanceService{store: store, students: students, classes: classes, now: time.Now}
}

// List returns all attendance records in insertion order.
func (s *AttendanceService) List() []models.AttendanceRecord {
	return decodeRows[models.AttendanceRecord](s.store.Read(ColAttendance))
}

// ListByClass returns a class's attendance, optionally restricted to the
// inclusive [from, to] date range (YYYY-MM-DD).
func (s *AttendanceService) ListByClass(classID, from, to string) ([]models.AttendanceRecord, error) {
	if !s.classes.Exists(classID) {
		return nil, fmt.Errorf("class %s: %w", classID, ErrNotFound)
	}

	records := make([]models.AttendanceRecord, 0)
	for _, rec := range s.List() {
		if rec.ClassID == classID {
			records = append(records, rec)
		}
	}
	return filterByDateRange(records, func(r models.AttendanceRecord) string { return r.DateTime }, from, to), nil
}

func (s *AttendanceService) validate(in AttendanceInput) error {
	if !s.classes.Exists(in.ClassID) {
		return fmt.Errorf("class %s: %w", in.ClassID, ErrNotFound)
	}
	if !s.students.Exists(in.StudentID) {
		return fmt.Errorf("student %s: %w", in.StudentID, ErrNotFound)
	}
	if !models.AttendanceStatus(strings.ToLower(string(in.Status))).Valid() {
		return fmt.Errorf("invalid attendance status %q", in.Status)
	}
	return nil
}

func (s *AttendanceService) build(in AttendanceInput) models.AttendanceRecord {
	dateTime := in.DateTime
	if dateTime == "" {
		dateTime = s.now().Format(time.RFC3339)
	}
	return models.AttendanceRecord{
		ID:        newID(),
		ClassID:   in.ClassID,
		StudentID: in.StudentID,
		DateTime:  dateTime,
		Status:    models.AttendanceStatus(strings.ToLower(string(in.Status))),
	}
}

// Create records a single attendance entry.
func (s *AttendanceService) Create(in AttendanceInput) (*models.AttendanceRecord, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	record := s.build(in)
	rows := append(s.List(), record)
	if _, err := s.store.Write(ColAttendance, toRecords(rows)); err != nil {
		return nil, fmt.Errorf("failed to persist attendance: %w: %w", ErrPersist, err)
	}
	return &record, nil
}

// CreateBulk records several attendance entries with a single collection
// write. All entries are validated before any of them is persisted.
func (s *AttendanceService) CreateBulk(inputs []AttendanceInput) ([]models.AttendanceRecord, error) {
	for _, in := range inputs {
		if err := s.validate(in); err != nil {
			return nil, err
		}
	}

	created := make([]models.AttendanceRecord, 0, len(inputs))
	rows := s.List()
	for _, in := range inputs {
		record := s.build(in)
		rows = append(rows, record)
		created = append(created, record)
	}
	if _, err := s.store.Write(ColAttendance, toRecords(rows)); err != nil {
		return nil, fmt.Errorf("failed to persist attendance: %w: %w", ErrPersist, err)
	}
	return created, nil
}
