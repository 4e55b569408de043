package template

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/api/middleware"
	"github.com/rsmnext/assistant-backend/internal/config"
	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/pkg/logger"
	"github.com/rsmnext/assistant-backend/internal/pkg/response"
	"github.com/rsmnext/assistant-backend/internal/pkg/validator"
)

const (
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	usecase   TemplateUsecase
	cfg       config.FileUploadConfig
	validator *validator.Validator
}

func NewHandler(usecase TemplateUsecase, cfg config.FileUploadConfig, v *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		cfg:       cfg,
		validator: v,
	}
}

// Fill handles POST /template/fill
func (h *Handler) Fill(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "FillTemplate")

	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		ctxzap.Warn(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid form data or size too large")
		return
	}

	req, err := h.buildRequest(r)
	if err != nil {
		ctxzap.Warn(ctx, "invalid template request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctxzap.Info(ctx, "filling document template",
		zap.String("template", req.Template.Filename),
		zap.String("variables", req.Variables.Filename),
	)

	result, err := h.usecase.Fill(ctx, sess, req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	writeDownload(w, "filled.docx", docxContentType, result.FilledDOCX)
}

// Variables handles GET /template/variables
func (h *Handler) Variables(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "DownloadResolvedVariables")

	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	artifacts, err := h.usecase.Artifacts(sess)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	writeDownload(w, "resolved_variables.xlsx", xlsxContentType, artifacts.AnnotatedXLSX)
}

// Document handles GET /template/document
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "DownloadFilledDocument")

	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	artifacts, err := h.usecase.Artifacts(sess)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	writeDownload(w, "filled.docx", docxContentType, artifacts.FilledDOCX)
}

func (h *Handler) buildRequest(r *http.Request) (*entity.TemplateFillRequest, error) {
	req := &entity.TemplateFillRequest{}
	inputs := []struct {
		field   string
		allowed map[string]bool
		dest    *entity.FileData
	}{
		{"guidelines", validator.TextOnly, &req.Guidelines},
		{"transcript", validator.DocumentOnly, &req.Transcript},
		{"financials", validator.PDFOnly, &req.Financials},
		{"variables", validator.WorkbookOnly, &req.Variables},
		{"template", validator.DocumentOnly, &req.Template},
	}

	for _, in := range inputs {
		file, err := h.readOne(r, in.field, in.allowed)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.field, err)
		}
		*in.dest = file
	}
	return req, nil
}

func (h *Handler) readOne(r *http.Request, field string, allowed map[string]bool) (entity.FileData, error) {
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return entity.FileData{}, entity.ErrMissingField
	}
	if err := h.validator.ValidateUpload(headers[:1], allowed); err != nil {
		return entity.FileData{}, err
	}
	data, err := readFile(headers[0])
	if err != nil {
		return entity.FileData{}, err
	}
	return entity.FileData{
		Filename: validator.SanitizeFilename(headers[0].Filename),
		Content:  data,
	}, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	return io.ReadAll(f)
}

func writeDownload(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrNoPipelineRun):
		response.Error(w, http.StatusNotFound, "no filled template available")
	case errors.Is(err, entity.ErrMissingTemplateInput),
		errors.Is(err, entity.ErrInvalidFile),
		errors.Is(err, entity.ErrMissingField):
		ctxzap.Warn(ctx, "template fill rejected", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrMissingLLMConfig):
		ctxzap.Error(ctx, "LLM endpoint not configured", zap.Error(err))
		response.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		ctxzap.Error(ctx, "template fill failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
