package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/validation"
)

const (
	msgInvalidID     = "Invalid ID supplied"
	msgInvalidBody   = "Invalid request body"
	msgInternalError = "Internal server error"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "status", status, "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, ErrorResponse{Error: message}, logger)
}

// pathParam returns a decoded path parameter. chi matches against
// r.URL.RawPath when it is set, and then hands back still-escaped values.
func pathParam(r *http.Request, param string) (string, error) {
	value := chi.URLParam(r, param)
	if r.URL.RawPath == "" {
		return value, nil
	}
	return url.PathUnescape(value)
}

// parseID reads a UUID path parameter
func parseID(r *http.Request, param string) (uuid.UUID, error) {
	value, err := pathParam(r, param)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(value)
}

// decodeJSON decodes the request body into dst
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func isValidationError(err error) bool {
	var verr validation.ValidationError
	return errors.As(err, &verr)
}

func mealNotFoundMessage(id uuid.UUID) string {
	return fmt.Sprintf("Meal with id %s not found", id)
}
