// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/flashdeck/flashdeck/internal/handler/dto"
	"github.com/flashdeck/flashdeck/internal/middleware"
	"github.com/flashdeck/flashdeck/internal/service"
)

// Handler serves the router-level fallbacks.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}

// responder carries what every resource handler needs to decode requests
// and report errors.
type responder struct {
	logger   *slog.Logger
	validate *validator.Validate
}

func newResponder(logger *slog.Logger, component string) responder {
	return responder{
		logger:   logger.With("component", component),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// decode reads a JSON body into dst and runs struct validation.
// It writes the error response itself and reports whether to continue.
func (rs responder) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}

	if err := rs.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage turns the first field error into a client message.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Invalid request body"
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	if fe.Tag() == "max" {
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}

// handleServiceError maps service errors to HTTP responses.
func (rs responder) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrDeckNotFound):
		writeError(w, http.StatusNotFound, "Deck not found")
	case errors.Is(err, service.ErrCardNotFound):
		writeError(w, http.StatusNotFound, "Card not found")
	case errors.Is(err, service.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "Deck name is required")
	case errors.Is(err, service.ErrInvalidFront):
		writeError(w, http.StatusBadRequest, "Card front is required")
	case errors.Is(err, service.ErrInvalidBack):
		writeError(w, http.StatusBadRequest, "Card back is required")
	case errors.Is(err, service.ErrInvalidDifficulty):
		writeError(w, http.StatusBadRequest, "Difficulty must be one of easy, medium, hard")
	case errors.Is(err, service.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "Invalid date range")
	default:
		rs.logger.Error("internal_error",
			"request_id", middleware.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
