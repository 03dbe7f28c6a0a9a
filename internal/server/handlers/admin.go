// Handles store administration.

package handlers

import (
	"context"
	"net/http"
	"slices"

	"github.com/academiahq/academia/internal/docstore"
	apierrors "github.com/academiahq/academia/internal/errors"
	"github.com/academiahq/academia/internal/storage"
)

// AdminHandler handles store administration requests. All routes require the
// admin role.
type AdminHandler struct {
	store *docstore.Store
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(store *docstore.Store) *AdminHandler {
	return &AdminHandler{store: store}
}

// RestoreRequest identifies the collection to restore.
type RestoreRequest struct {
	Name string `path:"name"`
}

// RestoreResponse reports the outcome of a restore attempt.
type RestoreResponse struct {
	Collection string `json:"collection"`
	Restored   bool   `json:"restored"`
}

// Restore replaces a collection's primary file with its last .bak copy.
// Only known collection names are accepted, so the store never touches a
// path outside the data directory.
func (h *AdminHandler) Restore(ctx context.Context, req RestoreRequest) (*RestoreResponse, error) {
	if !slices.Contains(storage.Collections, req.Name) {
		return nil, apierrors.NotFound("Collection")
	}
	if !h.store.Restore(req.Name) {
		return nil, apierrors.NewAPIError(http.StatusConflict, apierrors.ErrRestoreFailed, "No usable backup for collection").
			WithDetail("collection", req.Name)
	}
	return &RestoreResponse{Collection: req.Name, Restored: true}, nil
}
