package service

import (
	"context"
	"log/slog"

	"github.com/evaluatorhub/backend/internal/domain"
)

// EvaluationService handles evaluator-scoped evaluation CRUD
type EvaluationService struct {
	evaluations domain.EvaluationRepository
	logger      *slog.Logger
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(evaluations domain.EvaluationRepository, logger *slog.Logger) *EvaluationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &EvaluationService{
		evaluations: evaluations,
		logger:      logger,
	}
}

// List returns the caller's evaluations, newest first
func (s *EvaluationService) List(ctx context.Context, evaluatorID string) ([]*domain.Evaluation, error) {
	return s.evaluations.List(ctx, evaluatorID)
}

// Get returns a single evaluation if it exists and belongs to the caller
func (s *EvaluationService) Get(ctx context.Context, id, evaluatorID string) (*domain.Evaluation, error) {
	return s.evaluations.GetByID(ctx, id, evaluatorID)
}

// CreateEvaluationRequest carries the client-supplied evaluation fields
type CreateEvaluationRequest struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Category    string                   `json:"category"`
	Client      domain.Client            `json:"client"`
	Status      string                   `json:"status"`
	Details     domain.EvaluationDetails `json:"details"`
	TotalScore  float64                  `json:"totalScore"`
	Criteria    []domain.Criterion       `json:"criteria"`
}

// Create validates and stores a new evaluation. The evaluator is always the
// caller; any evaluator value in the request body is ignored.
func (s *EvaluationService) Create(ctx context.Context, evaluatorID string, req CreateEvaluationRequest) (*domain.Evaluation, error) {
	if req.Title == "" || req.Description == "" || req.Category == "" ||
		req.Client.Name == "" || req.Client.Contact == "" {
		return nil, domain.ValidationError("Please provide all required fields")
	}
	if !domain.ValidEvaluationCategory(req.Category) {
		return nil, domain.ValidationError("Invalid evaluation category")
	}

	status := req.Status
	if status == "" {
		status = domain.EvaluationPending
	}
	if !domain.ValidEvaluationStatus(status) {
		return nil, domain.ValidationError("Invalid evaluation status")
	}

	evaluation := &domain.Evaluation{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Evaluator:   evaluatorID,
		Client:      req.Client,
		Status:      status,
		Details:     req.Details,
		TotalScore:  req.TotalScore,
		Criteria:    req.Criteria,
	}

	if err := s.evaluations.Create(ctx, evaluation); err != nil {
		return nil, err
	}

	s.logger.Info("evaluation created",
		slog.String("evaluation_id", evaluation.ID),
		slog.String("evaluator", evaluatorID),
	)

	return evaluation, nil
}

// UpdateEvaluationRequest carries optional field changes; nil means "leave as is"
type UpdateEvaluationRequest struct {
	Title       *string                   `json:"title"`
	Description *string                   `json:"description"`
	Category    *string                   `json:"category"`
	Client      *domain.Client            `json:"client"`
	Status      *string                   `json:"status"`
	Details     *domain.EvaluationDetails `json:"details"`
	TotalScore  *float64                  `json:"totalScore"`
}

// Update merges the allow-listed fields into the stored evaluation
func (s *EvaluationService) Update(ctx context.Context, id, evaluatorID string, req UpdateEvaluationRequest) (*domain.Evaluation, error) {
	evaluation, err := s.evaluations.GetByID(ctx, id, evaluatorID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		evaluation.Title = *req.Title
	}
	if req.Description != nil {
		evaluation.Description = *req.Description
	}
	if req.Category != nil {
		if !domain.ValidEvaluationCategory(*req.Category) {
			return nil, domain.ValidationError("Invalid evaluation category")
		}
		evaluation.Category = *req.Category
	}
	if req.Client != nil {
		if req.Client.Name == "" || req.Client.Contact == "" {
			return nil, domain.ValidationError("Client name and contact are required")
		}
		evaluation.Client = *req.Client
	}
	if req.Status != nil {
		if !domain.ValidEvaluationStatus(*req.Status) {
			return nil, domain.ValidationError("Invalid evaluation status")
		}
		evaluation.Status = *req.Status
	}
	if req.Details != nil {
		evaluation.Details = *req.Details
	}
	if req.TotalScore != nil {
		evaluation.TotalScore = *req.TotalScore
	}

	if err := s.evaluations.Update(ctx, evaluation); err != nil {
		return nil, err
	}

	return evaluation, nil
}

// Delete removes an evaluation if it exists and belongs to the caller
func (s *EvaluationService) Delete(ctx context.Context, id, evaluatorID string) error {
	return s.evaluations.Delete(ctx, id, evaluatorID)
}
