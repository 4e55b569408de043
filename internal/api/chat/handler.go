package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/api/middleware"
	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/pkg/logger"
	"github.com/rsmnext/assistant-backend/internal/pkg/response"
)

type Handler struct {
	usecase ChatUsecase
}

func NewHandler(usecase ChatUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Send handles POST /chat
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SendMessage")

	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "invalid chat payload", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.usecase.Send(ctx, sess, req.Message)
	if err != nil {
		if errors.Is(err, entity.ErrEmptyPrompt) {
			response.Error(w, http.StatusBadRequest, "message must not be empty")
			return
		}
		ctxzap.Error(ctx, "chat turn failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response.Success(w, resp)
}

// History handles GET /chat/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetHistory")

	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	response.Success(w, h.usecase.History(sess))
}

// Clear handles DELETE /chat/history
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ClearHistory")

	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.usecase.Clear(ctx, sess)
	response.NoContent(w)
}

// Export handles GET /chat/export?format=md|docx|pdf
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ExportTranscript")

	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	format := entity.ResultFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = entity.FormatMarkdown
	}

	result, err := h.usecase.Export(ctx, sess, format)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidParameter) {
			response.Error(w, http.StatusBadRequest, "unsupported export format")
			return
		}
		ctxzap.Error(ctx, "export failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeDownload(w, result.Filename, result.ContentType, result.Data)
}

func writeDownload(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
