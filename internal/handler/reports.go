package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/evaluatorhub/backend/internal/security/middleware"
	"github.com/evaluatorhub/backend/internal/service"
)

// ReportHandler exposes the creator-scoped report CRUD endpoints and the
// PDF download.
type ReportHandler struct {
	reportService *service.ReportService
	logger        *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// List handles GET /api/reports?type=...
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	reports, err := h.reportService.List(r.Context(), user.ID, r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, h.logger, err, "Report not found or access denied", "Error fetching reports")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"reports": reports,
	})
}

// Get handles GET /api/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	report, err := h.reportService.Get(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		writeError(w, h.logger, err, "Report not found or access denied", "Error fetching report")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"report":  report,
	})
}

// Create handles POST /api/reports
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req service.CreateReportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := h.reportService.Create(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, h.logger, err, "Evaluation not found or access denied", "Error creating report")
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Report created successfully",
		"report":  report,
	})
}

// Update handles PUT /api/reports/{id}
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req service.UpdateReportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := h.reportService.Update(r.Context(), r.PathValue("id"), user.ID, req)
	if err != nil {
		writeError(w, h.logger, err, "Report not found or access denied", "Error updating report")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Report updated successfully",
		"report":  report,
	})
}

// Delete handles DELETE /api/reports/{id}
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	if err := h.reportService.Delete(r.Context(), r.PathValue("id"), user.ID); err != nil {
		writeError(w, h.logger, err, "Report not found or access denied", "Error deleting report")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Report deleted successfully",
	})
}

// Download handles GET /api/reports/{id}/download. The PDF is rendered into
// a buffer first so a failed lookup still gets a JSON error response.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var buf bytes.Buffer
	filename, err := h.reportService.RenderPDF(r.Context(), r.PathValue("id"), user.ID, &buf)
	if err != nil {
		writeError(w, h.logger, err, "Report not found or access denied", "Error generating PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to stream report pdf", slog.String("error", err.Error()))
	}
}
