package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/api/middleware"
	"github.com/rsmnext/assistant-backend/internal/config"
	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/pkg/logger"
	"github.com/rsmnext/assistant-backend/internal/pkg/response"
	"github.com/rsmnext/assistant-backend/internal/pkg/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	usecase   AuditUsecase
	cfg       config.FileUploadConfig
	validator *validator.Validator
}

func NewHandler(usecase AuditUsecase, cfg config.FileUploadConfig, v *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		cfg:       cfg,
		validator: v,
	}
}

// Run handles POST /audit/run
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "RunPipeline")

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
		ctxzap.Warn(ctx, "invalid pipeline request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctxzap.Info(ctx, "running audit pipeline",
		zap.Int("public_files", len(req.PublicFiles)),
		zap.Int("client_files", len(req.ClientFiles)),
		zap.String("company", req.CompanyName),
	)

	result, err := h.usecase.Run(ctx, sess, req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, result)
}

// Result handles GET /audit/result
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetPipelineResult")

	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.usecase.Result(sess)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, result)
}

// DownloadQuestions handles GET /audit/download/questions
func (h *Handler) DownloadQuestions(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "DownloadQuestions", "1300.xlsx", func(res *entity.PipelineResult) []byte {
		return res.AnswersXLSX
	})
}

// DownloadMemo handles GET /audit/download/memo
func (h *Handler) DownloadMemo(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "DownloadMemo", "Overview_of_risks.xlsx", func(res *entity.PipelineResult) []byte {
		return res.RiskMemoXLSX
	})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request, action, filename string, pick func(*entity.PipelineResult) []byte) {
	ctx := logger.WithAction(r.Context(), action)

	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.usecase.Result(sess)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(pick(result))
}

func (h *Handler) buildRequest(r *http.Request) (*entity.AuditRunRequest, error) {
	form := r.MultipartForm

	publicFiles, err := h.readFiles(form.File["public"], validator.PDFOnly)
	if err != nil {
		return nil, err
	}
	clientFiles, err := h.readFiles(form.File["client"], validator.PDFOnly)
	if err != nil {
		return nil, err
	}
	questions, err := h.readOne(form.File["questions"], validator.WorkbookOnly)
	if err != nil {
		return nil, fmt.Errorf("questions workbook: %w", err)
	}
	memo, err := h.readOne(form.File["risk_memo"], validator.WorkbookOnly)
	if err != nil {
		return nil, fmt.Errorf("risk memo template: %w", err)
	}

	return &entity.AuditRunRequest{
		PublicFiles:  publicFiles,
		ClientFiles:  clientFiles,
		Questions:    questions,
		RiskMemo:     memo,
		CompanyName:  r.FormValue("company_name"),
		BookYear:     r.FormValue("book_year"),
		ChunkSize:    intValue(r, "chunk_size"),
		ChunkOverlap: intValue(r, "chunk_overlap"),
		TopK:         intValue(r, "top_k"),
	}, nil
}

func (h *Handler) readFiles(headers []*multipart.FileHeader, allowed map[string]bool) ([]entity.FileData, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	if err := h.validator.ValidateUpload(headers, allowed); err != nil {
		return nil, err
	}

	files := make([]entity.FileData, 0, len(headers))
	for _, fh := range headers {
		data, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, entity.FileData{
			Filename: validator.SanitizeFilename(fh.Filename),
			Content:  data,
		})
	}
	return files, nil
}

func (h *Handler) readOne(headers []*multipart.FileHeader, allowed map[string]bool) (entity.FileData, error) {
	if len(headers) == 0 {
		return entity.FileData{}, entity.ErrMissingField
	}
	files, err := h.readFiles(headers[:1], allowed)
	if err != nil {
		return entity.FileData{}, err
	}
	return files[0], nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	return io.ReadAll(f)
}

func intValue(r *http.Request, field string) int {
	n, _ := strconv.Atoi(r.FormValue(field))
	return n
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrNoPipelineRun):
		response.Error(w, http.StatusNotFound, "no pipeline results available")
	case errors.Is(err, entity.ErrInvalidChunking),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrEmptyCorpus),
		errors.Is(err, entity.ErrMissingTemplateInput),
		errors.Is(err, entity.ErrInvalidFile),
		errors.Is(err, entity.ErrMissingField):
		ctxzap.Warn(ctx, "pipeline rejected", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrRisksNotJSON):
		ctxzap.Error(ctx, "risk extraction returned malformed output", zap.Error(err))
		response.Error(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, entity.ErrMissingLLMConfig):
		ctxzap.Error(ctx, "LLM endpoint not configured", zap.Error(err))
		response.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		ctxzap.Error(ctx, "pipeline failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
