// Package handlers provides HTTP request handlers for the service's API endpoints.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/planfold/planfold/internal/adapters/http/dto"
	"github.com/planfold/planfold/internal/adapters/http/middleware"
	"github.com/planfold/planfold/internal/domain"
)

// urlParam extracts a non-empty string path parameter from the chi URL
// params.
func urlParam(r *http.Request, param string) (string, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return "", &domain.ValidationError{Field: param, Message: "is required"}
	}
	return raw, nil
}

// currentUserID returns the authenticated user id from the request context.
func currentUserID(r *http.Request) (string, error) {
	id := middleware.UserIDFromContext(r.Context())
	if id == "" {
		return "", &domain.UnauthorizedError{Action: "access the API"}
	}
	return id, nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

// maxJSONBodyBytes is the maximum allowed size for a JSON request body (1 MB).
const maxJSONBodyBytes = 1 << 20

// decodeJSONBody decodes the request body as JSON into dst. The body is
// limited to maxJSONBodyBytes to prevent resource exhaustion, and unknown
// types for known fields (a string "completed", say) fail decoding. On
// failure the 400 error response is written and false returned.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{
			Field:   "body",
			Message: "invalid JSON",
		})
		return false
	}
	return true
}
