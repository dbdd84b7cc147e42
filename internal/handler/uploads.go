package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recetapp/recetapp/internal/storage"
)

// ImageOpener reads stored images back.
type ImageOpener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// UploadHandler serves stored recipe images.
type UploadHandler struct {
	images ImageOpener
	logger *slog.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(images ImageOpener, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{images: images, logger: logger}
}

// Serve handles GET /uploads/{file}.
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name, err := storage.CleanName(chi.URLParam(r, "file"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "Imagen no encontrada")
		return
	}

	rc, contentType, err := h.images.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) || errors.Is(err, storage.ErrInvalidName) {
			writeError(w, http.StatusNotFound, CodeNotFound, "Imagen no encontrada")
			return
		}
		h.logger.Error("image_open_failed", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, genericInternalMessage)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("image_stream_failed", "name", name, "error", err)
	}
}
