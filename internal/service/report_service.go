package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/evaluatorhub/backend/internal/domain"
)

// ReportService handles creator-scoped report CRUD, the evaluation reference
// integrity rule, approved-report immutability, and PDF rendering.
type ReportService struct {
	reports     domain.ReportRepository
	evaluations domain.EvaluationRepository
	users       domain.UserRepository
	logger      *slog.Logger
}

// NewReportService creates a new report service
func NewReportService(reports domain.ReportRepository, evaluations domain.EvaluationRepository, users domain.UserRepository, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ReportService{
		reports:     reports,
		evaluations: evaluations,
		users:       users,
		logger:      logger,
	}
}

// List returns the caller's reports, optionally filtered by type
func (s *ReportService) List(ctx context.Context, creatorID, reportType string) ([]*domain.Report, error) {
	return s.reports.List(ctx, creatorID, reportType)
}

// Get returns a single report if it exists and belongs to the caller
func (s *ReportService) Get(ctx context.Context, id, creatorID string) (*domain.Report, error) {
	return s.reports.GetByID(ctx, id, creatorID)
}

// CreateReportRequest carries the client-supplied report fields
type CreateReportRequest struct {
	Title           string              `json:"title"`
	Type            string              `json:"type"`
	Content         string              `json:"content"`
	Evaluation      string              `json:"evaluation"`
	Findings        string              `json:"findings"`
	Recommendations string              `json:"recommendations"`
	Attachments     []domain.Attachment `json:"attachments"`
}

// Create validates and stores a new report. A type=evaluation report must
// reference an evaluation that exists and belongs to the caller; the check
// shares the owner-scoped lookup, so a foreign evaluation is
// indistinguishable from a missing one.
func (s *ReportService) Create(ctx context.Context, creatorID string, req CreateReportRequest) (*domain.Report, error) {
	if req.Title == "" || req.Type == "" || req.Content == "" ||
		req.Findings == "" || req.Recommendations == "" {
		return nil, domain.ValidationError("Please provide all required fields")
	}
	if !domain.ValidReportType(req.Type) {
		return nil, domain.ValidationError("Invalid report type")
	}

	evaluationRef := ""
	if req.Type == domain.ReportTypeEvaluation {
		if req.Evaluation == "" {
			return nil, domain.ValidationError("Evaluation is required for evaluation reports")
		}
		if _, err := s.evaluations.GetByID(ctx, req.Evaluation, creatorID); err != nil {
			return nil, domain.ErrNotFound
		}
		evaluationRef = req.Evaluation
	}

	now := time.Now()
	report := &domain.Report{
		Title:           req.Title,
		Type:            req.Type,
		Content:         req.Content,
		Evaluation:      evaluationRef,
		Findings:        req.Findings,
		Recommendations: req.Recommendations,
		Status:          domain.ReportDraft,
		CreatedBy:       creatorID,
		Metadata: domain.ReportMetadata{
			LastModified: now,
			Version:      1,
		},
		Attachments: req.Attachments,
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("report created",
		slog.String("report_id", report.ID),
		slog.String("created_by", creatorID),
	)

	return report, nil
}

// UpdateReportRequest carries optional field changes; nil means "leave as is"
type UpdateReportRequest struct {
	Title           *string `json:"title"`
	Content         *string `json:"content"`
	Findings        *string `json:"findings"`
	Recommendations *string `json:"recommendations"`
	Status          *string `json:"status"`
	Evaluation      *string `json:"evaluation"`
}

// Update merges the allow-listed fields into the stored report. An approved
// report is immutable. A changed evaluation reference re-runs the same
// ownership check performed at creation. Every successful update bumps
// metadata.version and refreshes metadata.lastModified.
func (s *ReportService) Update(ctx context.Context, id, creatorID string, req UpdateReportRequest) (*domain.Report, error) {
	report, err := s.reports.GetByID(ctx, id, creatorID)
	if err != nil {
		return nil, err
	}

	if report.Status == domain.ReportApproved {
		return nil, domain.ValidationError("Cannot update an approved report")
	}

	if req.Title != nil {
		report.Title = *req.Title
	}
	if req.Content != nil {
		report.Content = *req.Content
	}
	if req.Findings != nil {
		report.Findings = *req.Findings
	}
	if req.Recommendations != nil {
		report.Recommendations = *req.Recommendations
	}
	if req.Status != nil {
		if !domain.ValidReportStatus(*req.Status) {
			return nil, domain.ValidationError("Invalid report status")
		}
		report.Status = *req.Status
	}
	if req.Evaluation != nil && *req.Evaluation != report.Evaluation {
		if *req.Evaluation != "" {
			if _, err := s.evaluations.GetByID(ctx, *req.Evaluation, creatorID); err != nil {
				return nil, domain.ErrNotFound
			}
		}
		report.Evaluation = *req.Evaluation
	}

	report.Metadata.Version++
	report.Metadata.LastModified = time.Now()

	if err := s.reports.Update(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}

// Delete removes a report unless it has been approved
func (s *ReportService) Delete(ctx context.Context, id, creatorID string) error {
	report, err := s.reports.GetByID(ctx, id, creatorID)
	if err != nil {
		return err
	}

	if report.Status == domain.ReportApproved {
		return domain.ValidationError("Cannot delete an approved report")
	}

	return s.reports.Delete(ctx, id, creatorID)
}
