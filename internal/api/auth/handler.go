package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/api/middleware"
	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/pkg/logger"
	"github.com/rsmnext/assistant-backend/internal/pkg/response"
)

const sessionCookie = "session_token"

type Handler struct {
	usecase AuthUsecase
}

func NewHandler(usecase AuthUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Login")

	var req entity.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "invalid login payload", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.usecase.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidCredential) {
			response.Error(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		ctxzap.Error(ctx, "login failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// The cookie backs direct browser downloads; API clients use the
	// bearer token from the body.
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    resp.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	response.Success(w, resp)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Logout")

	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.usecase.Logout(ctx, sess.ID)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	response.NoContent(w)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Me")

	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	response.Success(w, map[string]string{
		"username": sess.User.Username,
		"name":     sess.User.Name,
	})
}
