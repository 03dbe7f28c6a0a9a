// Package server implements the HTTP server and routing logic.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"

	apierrors "github.com/academiahq/academia/internal/errors"
)

// Wrap adapts a function with signature func(context.Context, In) (*Out, error)
// into an http.Handler. The request body, when present, is decoded into In
// with unknown fields rejected; struct fields tagged `path:"name"` or
// `query:"name"` are populated from the URL. Errors implementing
// apierrors.ErrorWithStatus choose their own status and code; anything else
// is a 500.
func Wrap[In any, Out any](fn func(context.Context, In) (*Out, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		body, err := io.ReadAll(r.Body)
		if err2 := r.Body.Close(); err == nil {
			err = err2
		}
		if err != nil {
			slog.ErrorContext(ctx, "Failed to read request body", "err", err)
			writeError(w, apierrors.BadRequest("Failed to read request body"))
			return
		}

		var input In
		if len(body) > 0 {
			d := json.NewDecoder(bytes.NewReader(body))
			d.DisallowUnknownFields()
			if err := d.Decode(&input); err != nil {
				slog.ErrorContext(ctx, "Failed to decode request body", "err", err)
				writeError(w, apierrors.NewAPIError(http.StatusBadRequest, apierrors.ErrInvalidFormat, "Invalid request body"))
				return
			}
		}
		populateParams(r, &input)

		output, err := fn(ctx, input)
		if err != nil {
			var ews apierrors.ErrorWithStatus
			if !errors.As(err, &ews) {
				ews = apierrors.InternalWithError("Internal error", err)
			}
			slog.ErrorContext(ctx, "Handler error", "err", err, "statusCode", ews.StatusCode(), "code", ews.Code())
			writeError(w, ews)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(output); err != nil {
			slog.ErrorContext(ctx, "Failed to encode response", "err", err)
		}
	})
}

// populateParams fills struct fields tagged `path:"name"` from URL path
// values and `query:"name"` from query parameters. Only string fields are
// supported.
func populateParams(r *http.Request, input any) {
	val := reflect.ValueOf(input)
	if val.Kind() != reflect.Ptr {
		return
	}
	elem := val.Elem()
	if elem.Kind() != reflect.Struct {
		return
	}

	query := r.URL.Query()
	typ := elem.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)
		if field.Type.Kind() != reflect.String {
			continue
		}
		if tag := field.Tag.Get("path"); tag != "" {
			if v := r.PathValue(tag); v != "" {
				elem.Field(i).SetString(v)
			}
			continue
		}
		if tag := field.Tag.Get("query"); tag != "" {
			if v := query.Get(tag); v != "" {
				elem.Field(i).SetString(v)
			}
		}
	}
}

// writeError writes a structured error response as JSON.
func writeError(w http.ResponseWriter, err apierrors.ErrorWithStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode())

	response := map[string]any{
		"error": map[string]any{
			"code":    err.Code(),
			"message": err.Error(),
		},
	}
	if details := err.Details(); len(details) > 0 {
		response["details"] = details
	}
	_ = json.NewEncoder(w).Encode(response)
}
