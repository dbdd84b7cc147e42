package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/recetapp/recetapp/internal/handler/dto"
	"github.com/recetapp/recetapp/internal/service"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	svc    *service.UserService
	logger *slog.Logger
	errs   errorMapper
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.UserService, logger *slog.Logger, isDevelopment bool) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
		errs:   errorMapper{logger: logger, isDevelopment: isDevelopment},
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, h.errs, &req) {
		return
	}

	result, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RegisterResponse{
		Token: result.Token,
		User:  dto.ToUserResponse(result.User),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, h.errs, &req) {
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Info("login_rejected", "ip", r.RemoteAddr)
		}
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{Token: token})
}

// decodeJSON reads a JSON body into dst. It writes the error response and
// returns false when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, errs errorMapper, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			errs.write(w, r, err)
			return false
		}
		writeError(w, http.StatusBadRequest, CodeInvalidJSON, "El cuerpo de la petición no es JSON válido")
		return false
	}
	return true
}
