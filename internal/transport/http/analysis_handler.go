package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"pvcli/internal/config"
	apperrors "pvcli/internal/errors"
	"pvcli/internal/services"
)

const (
	// FileField is the multipart field carrying the input table
	FileField = "file"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// defaultMaxMemory is the part of an upload kept in memory before
	// spilling to temporary files
	defaultMaxMemory = 8 << 20
)

// AnalysisHandler serves the upload API
type AnalysisHandler struct {
	service      *services.AnalysisService
	maxMemory    int64
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewAnalysisHandler creates an analysis handler. maxMemory <= 0 uses 8 MiB.
func NewAnalysisHandler(service *services.AnalysisService, maxMemory int64, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *AnalysisHandler {
	if maxMemory <= 0 {
		maxMemory = defaultMaxMemory
	}
	return &AnalysisHandler{
		service:      service,
		maxMemory:    maxMemory,
		logger:       logger.With(slog.String("handler", "analysis")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes, mounted under /api/analyze
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Analyze)
	r.Post("/preview", h.Preview)
	return r
}

// Analyze handles POST /api/analyze and returns the workbook as a download
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	report, ok := h.run(w, r, nil)
	if !ok {
		return
	}

	// Buffer the workbook so a write failure still yields a problem response
	var buf bytes.Buffer
	if err := h.service.WriteWorkbook(r.Context(), report, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", config.WorkbookFileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Run-ID", report.Summary.RunID)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "failed to send workbook",
			slog.String("run_id", report.Summary.RunID),
			slog.String("error", err.Error()))
	}
}

// Preview handles POST /api/analyze/preview. The optional "rows" field
// sets how many Data rows are echoed.
func (h *AnalysisHandler) Preview(w http.ResponseWriter, r *http.Request) {
	rows := 0
	report, ok := h.run(w, r, func() error {
		raw := r.FormValue("rows")
		if raw == "" {
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return apperrors.ErrValidation("rows", "must be a positive integer")
		}
		rows = n
		return nil
	})
	if !ok {
		return
	}

	render.JSON(w, r, h.service.Preview(report, rows))
}

// run parses the upload and analyses it, writing a problem response on
// failure. check, when set, validates extra form fields before the input
// is read.
func (h *AnalysisHandler) run(w http.ResponseWriter, r *http.Request, check func() error) (*services.Report, bool) {
	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		h.errorHandler.HandleError(w, r, uploadError(err))
		return nil, false
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	params, err := h.service.ParseParams(r.FormValue)
	if err == nil && check != nil {
		err = check()
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	file, header, err := r.FormFile(FileField)
	if err != nil {
		h.errorHandler.HandleError(w, r, uploadError(err))
		return nil, false
	}
	defer file.Close()

	h.logger.DebugContext(r.Context(), "upload received",
		slog.String("file", header.Filename),
		slog.Int64("size", header.Size))

	report, err := h.service.Analyze(r.Context(), services.AnalyzeRequest{
		Name:   header.Filename,
		Reader: file,
		Params: params,
		Source: services.SourceWeb,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return report, true
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return err
	case errors.Is(err, http.ErrMissingFile):
		return apperrors.ErrMissingFile
	default:
		return apperrors.InvalidRequestWithError(err)
	}
}
