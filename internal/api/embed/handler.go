package embed

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
	embeduc "github.com/rsmnext/assistant-backend/internal/usecase/embed"
)

type Handler struct {
	usecase EmbedUsecase
}

func NewHandler(usecase EmbedUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Targets handles GET /embeds
func (h *Handler) Targets(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListEmbeds")

	if _, ok := middleware.SessionFrom(ctx); !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	response.Success(w, map[string]any{"targets": h.usecase.Targets()})
}

// Support handles POST /support
func (h *Handler) Support(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "BuildSupportLink")

	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req embeduc.SupportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = sess.User.Username

	link, err := h.usecase.SupportLink(&req)
	if err != nil {
		if errors.Is(err, entity.ErrMissingField) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		ctxzap.Error(ctx, "failed to build support link", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response.Success(w, map[string]string{"url": link})
}
