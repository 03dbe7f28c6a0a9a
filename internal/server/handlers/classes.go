// Handles the class catalog.

package handlers

import (
	"context"

	apierrors "github.com/academiahq/academia/internal/errors"
	"github.com/academiahq/academia/internal/models"
	"github.com/academiahq/academia/internal/storage"
)

// ClassHandler handles class CRUD requests.
type ClassHandler struct {
	classes *storage.ClassService
}

// NewClassHandler creates a new class handler.
func NewClassHandler(classes *storage.ClassService) *ClassHandler {
	return &ClassHandler{classes: classes}
}

// ListClassesRequest has no parameters.
type ListClassesRequest struct{}

// ClassListResponse wraps the class catalog.
type ClassListResponse struct {
	Classes []models.Class `json:"classes"`
}

// List returns all classes.
func (h *ClassHandler) List(ctx context.Context, req ListClassesRequest) (*ClassListResponse, error) {
	return &ClassListResponse{Classes: h.classes.List()}, nil
}

// GetClassRequest identifies one class.
type GetClassRequest struct {
	ID string `path:"id"`
}

// Get returns a single class by ID.
func (h *ClassHandler) Get(ctx context.Context, req GetClassRequest) (*models.Class, error) {
	class, err := h.classes.Get(req.ID)
	if err != nil {
		return nil, serviceError(err)
	}
	return class, nil
}

// CreateClassRequest is the class creation payload.
type CreateClassRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create registers a new class.
func (h *ClassHandler) Create(ctx context.Context, req CreateClassRequest) (*models.Class, error) {
	if req.Name == "" {
		return nil, apierrors.MissingField("name")
	}
	class, err := h.classes.Create(req.Name, req.Description)
	if err != nil {
		return nil, serviceError(err)
	}
	return class, nil
}
