// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/recetapp/recetapp/internal/handler/dto"
	"github.com/recetapp/recetapp/internal/service"
	"github.com/recetapp/recetapp/internal/upload"
)

// Error codes returned in the "code" member of error bodies.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeInvalidJSON      = "INVALID_JSON"
	CodeEmailTaken       = "EMAIL_TAKEN"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"
	CodeTooManyFiles     = "TOO_MANY_FILES"
	CodeInternal         = "INTERNAL_ERROR"
)

const genericInternalMessage = "Error interno del servidor"

// Handler serves the fallback routes.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, CodeNotFound, "Recurso no encontrado")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Método no permitido")
}

// errorMapper turns service and upload errors into HTTP responses.
// Unknown errors become 500s; their message is only exposed in development.
type errorMapper struct {
	logger        *slog.Logger
	isDevelopment bool
}

func (m errorMapper) write(w http.ResponseWriter, r *http.Request, err error) {
	var validation *service.ValidationError
	var maxBytes *http.MaxBytesError

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, CodeValidation, validation.Error())
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, CodeValidation, "Datos no válidos")
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusBadRequest, CodeEmailTaken, "El email ya está registrado")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Credenciales inválidas")
	case errors.Is(err, service.ErrRecipeNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "Receta no encontrada")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "Usuario no encontrado")
	case errors.Is(err, upload.ErrFileTooLarge), errors.As(err, &maxBytes):
		writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "La imagen supera el tamaño máximo permitido")
	case errors.Is(err, upload.ErrUnsupportedType):
		writeError(w, http.StatusUnsupportedMediaType, CodeUnsupportedMedia, "Formato de imagen no soportado")
	case errors.Is(err, upload.ErrEmptyFile):
		writeError(w, http.StatusBadRequest, CodeValidation, "La imagen está vacía")
	case errors.Is(err, upload.ErrTooManyFiles):
		writeError(w, http.StatusBadRequest, CodeTooManyFiles, "Solo se permite una imagen")
	default:
		m.logger.Error("request_failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		msg := genericInternalMessage
		if m.isDevelopment {
			msg = err.Error()
		}
		writeError(w, http.StatusInternalServerError, CodeInternal, msg)
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("response_encode_failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Code: code})
}
