package vat

import (
	"context"
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

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type checkRequest struct {
	Numbers []string `json:"numbers"`
}

type Handler struct {
	usecase VATUsecase
}

func NewHandler(usecase VATUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Check handles POST /vat/check
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CheckVAT")

	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctxzap.Info(ctx, "checking VAT numbers", zap.Int("count", len(req.Numbers)))

	results, err := h.usecase.Check(ctx, sess, req.Numbers)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, results)
}

// Report handles GET /vat/report
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "DownloadVATReport")

	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	report, err := h.usecase.Report(sess)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "vat_results.xlsx"))
	w.WriteHeader(http.StatusOK)
	w.Write(report.XLSX)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrNoVATNumbers):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrNoVATReport):
		response.Error(w, http.StatusNotFound, err.Error())
	default:
		ctxzap.Error(ctx, "VAT check failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
