package handler

import (
	"log/slog"
	"net/http"

	"github.com/evaluatorhub/backend/internal/security/middleware"
	"github.com/evaluatorhub/backend/internal/service"
)

// EvaluationHandler exposes the evaluator-scoped evaluation CRUD endpoints
type EvaluationHandler struct {
	evaluationService *service.EvaluationService
	logger            *slog.Logger
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(evaluationService *service.EvaluationService, logger *slog.Logger) *EvaluationHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &EvaluationHandler{
		evaluationService: evaluationService,
		logger:            logger,
	}
}

// List handles GET /api/evaluations
func (h *EvaluationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	evaluations, err := h.evaluationService.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err, "Evaluation not found or access denied", "Error fetching evaluations")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":     true,
		"evaluations": evaluations,
	})
}

// Get handles GET /api/evaluations/{id}
func (h *EvaluationHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	evaluation, err := h.evaluationService.Get(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		writeError(w, h.logger, err, "Evaluation not found or access denied", "Error fetching evaluation")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":    true,
		"evaluation": evaluation,
	})
}

// Create handles POST /api/evaluations
func (h *EvaluationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req service.CreateEvaluationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	evaluation, err := h.evaluationService.Create(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, h.logger, err, "Evaluation not found or access denied", "Error creating evaluation")
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success":    true,
		"evaluation": evaluation,
	})
}

// Update handles PUT /api/evaluations/{id}
func (h *EvaluationHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req service.UpdateEvaluationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	evaluation, err := h.evaluationService.Update(r.Context(), r.PathValue("id"), user.ID, req)
	if err != nil {
		writeError(w, h.logger, err, "Evaluation not found or access denied", "Error updating evaluation")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":    true,
		"message":    "Evaluation updated successfully",
		"evaluation": evaluation,
	})
}

// Delete handles DELETE /api/evaluations/{id}
func (h *EvaluationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	if err := h.evaluationService.Delete(r.Context(), r.PathValue("id"), user.ID); err != nil {
		writeError(w, h.logger, err, "Evaluation not found or access denied", "Error deleting evaluation")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Evaluation deleted successfully",
	})
}
