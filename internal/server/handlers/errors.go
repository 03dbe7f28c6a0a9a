package handlers

import (
	"errors"
	"net/http"

	apierrors "github.com/academiahq/academia/internal/errors"
	"github.com/academiahq/academia/internal/storage"
)

// serviceError maps storage layer errors to API errors. Missing references
// become 404s, duplicates 409s, persistence failures 500s, and everything
// else is treated as a validation failure.
func serviceError(err error) error {
	var ews apierrors.ErrorWithStatus
	if errors.As(err, &ews) {
		return err
	}
	if errors.Is(err, storage.ErrNotFound) {
		return apierrors.NewAPIError(http.StatusNotFound, apierrors.ErrNotFound, err.Error())
	}
	if errors.Is(err, storage.ErrExists) {
		return apierrors.Conflict(err.Error())
	}
	if errors.Is(err, storage.ErrPersist) {
		return apierrors.NewAPIError(http.StatusInternalServerError, apierrors.ErrStorageError, "Failed to persist changes").Wrap(err)
	}
	return apierrors.BadRequest(err.Error())
}
