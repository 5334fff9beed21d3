package http

import (
	"io"
	"mime"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/response"
)

type DeviceUploadHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
}

type deviceUploadHandlerImpl struct {
	uploadService attendance.UploadService
}

func NewDeviceUploadHandler(uploadService attendance.UploadService) DeviceUploadHandler {
	return &deviceUploadHandlerImpl{uploadService: uploadService}
}

// Submit stores a terminal's raw export. Terminals either post a multipart
// "file" field or the raw file as the request body.
func (h *deviceUploadHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	d, ok := middleware.DeviceFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Device authentication required")
		return
	}

	req := attendance.SubmitUploadRequest{
		CompanyID: d.CompanyID,
		BranchID:  d.BranchID,
		DeviceID:  d.ID,
		Format:    r.URL.Query().Get("format"),
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBatchSize); err != nil {
			response.BadRequest(w, "Invalid multipart form", nil)
			return
		}
		payload, filename, err := readFormFile(r, "file")
		if err != nil {
			response.BadRequest(w, err.Error(), nil)
			return
		}
		req.Payload = payload
		if req.Format == "" {
			req.Format = string(formatFromFilename(filename))
		}
	} else {
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBatchSize))
		if err != nil {
			response.BadRequest(w, "Failed to read request body", nil)
			return
		}
		req.Payload = payload
		if req.Format == "" {
			req.Format = string(attendance.BatchFormatDelimited)
		}
	}

	result, err := h.uploadService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance upload accepted", result)
}
