package handler

import (
	"log/slog"
	"net/http"

	"github.com/recetapp/recetapp/internal/handler/dto"
	"github.com/recetapp/recetapp/internal/service"
)

// UserHandler handles account maintenance.
type UserHandler struct {
	svc  *service.UserService
	errs errorMapper
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger, isDevelopment bool) *UserHandler {
	return &UserHandler{
		svc:  svc,
		errs: errorMapper{logger: logger, isDevelopment: isDevelopment},
	}
}

// RemoveEmail handles DELETE /api/users/remove-email.
// It clears the email of the matching account; the account row is kept.
func (h *UserHandler) RemoveEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.RemoveEmailRequest
	if !decodeJSON(w, r, h.errs, &req) {
		return
	}

	if err := h.svc.RemoveEmail(r.Context(), req.Email); err != nil {
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Email eliminado correctamente"})
}
