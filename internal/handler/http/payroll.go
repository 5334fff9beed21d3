package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// maxBatchSize caps uploaded attendance files.
const maxBatchSize = 32 << 20

type PayrollHandler interface {
	ProcessBatch(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== BATCHES ==========

// ProcessBatch accepts either a multipart file upload or a JSON list of
// structured events.
func (h *payrollHandlerImpl) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req payroll.ProcessBatchRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBatchSize); err != nil {
			response.BadRequest(w, "Invalid multipart form", nil)
			return
		}

		req.BranchID = r.FormValue("branch_id")
		req.PeriodStart = r.FormValue("period_start")
		req.PeriodEnd = r.FormValue("period_end")
		req.Format = r.FormValue("format")

		payload, filename, err := readFormFile(r, "file")
		if err != nil {
			response.BadRequest(w, err.Error(), nil)
			return
		}
		req.Payload = payload
		if req.Format == "" {
			req.Format = string(formatFromFilename(filename))
		}
	default:
		r.Body = http.MaxBytesReader(w, r.Body, maxBatchSize)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}

	req.Source = payroll.RunSourceAPI
	result, err := h.payrollService.ProcessBatch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll batch processed", result)
}

// ========== RUNS ==========

func (h *payrollHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	result, err := h.payrollService.GetRun(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	var filter payroll.RunFilter

	if branchID := r.URL.Query().Get("branch_id"); branchID != "" {
		filter.BranchID = &branchID
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter.Limit = limit
	}

	result, err := h.payrollService.ListRuns(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Runs, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// ========== HELPERS ==========

var errFileRequired = errors.New("file is required")

func readFormFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", errFileRequired
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		return nil, "", errors.New("failed to read uploaded file")
	}
	return payload, header.Filename, nil
}

func formatFromFilename(name string) attendance.BatchFormat {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return attendance.BatchFormatSpreadsheet
	case ".json":
		return attendance.BatchFormatEvents
	default:
		return attendance.BatchFormatDelimited
	}
}
