package storage

import (
	"fmt"
	"time"

	"github.com/academiahq/academia/internal/docstore"
	"github.com/academiahq/academia/internal/models"
)

// ClassService manages the classes collection.
type ClassService struct {
	store *docstore.Store
	now   func() time.Time
}

// NewClassService creates a new class service.
func NewClassService(store *docstore.Store) *ClassService {
	return &ClassService{store: store, now: time.Now}
}

// List returns all classes in insertion order.
func (s *ClassService) List() []models.Class {
	return decodeRows[models.Class](s.store.Read(ColClasses))
}

// Get retrieves a class by ID.
func (s *ClassService) Get(id string) (*models.Class, error) {
	for _, class := range s.List() {
		if class.ID == id {
			return &class, nil
		}
	}
	return nil, fmt.Errorf("class %s: %w", id, ErrNotFound)
}

// Exists reports whether a class with the given ID exists.
func (s *ClassService) Exists(id string) bool {
	_, err := s.Get(id)
	return err == nil
}

// Create adds a new class.
func (s *ClassService) Create(name, description string) (*models.Class, error) {
	if name == "" {
		return nil, fmt.Errorf("class name is required")
	}

	class := models.Class{
		ID:          newID(),
		Name:        name,
		Description: description,
		CreatedAt:   s.now().Format(time.RFC3339),
	}

	rows := append(s.List(), class)
	if _, err := s.store.Write(ColClasses, toRecords(rows)); err != nil {
		return nil, fmt.Errorf("failed to persist class: %w: %w", ErrPersist, err)
	}
	return &class, nil
}
