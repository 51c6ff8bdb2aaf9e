package domain

import (
	"context"
	"time"
)

// Report types
const (
	ReportTypeEvaluation = "evaluation"
	ReportTypeAsset      = "asset"
	ReportTypeCombined   = "combined"
)

// Report statuses. An approved report is terminal: no further update or
// deletion is permitted.
const (
	ReportDraft    = "draft"
	ReportPending  = "pending"
	ReportApproved = "approved"
)

// ReportMetadata tracks revision state of a report
type ReportMetadata struct {
	LastModified time.Time `json:"lastModified"`
	Version      int       `json:"version"`
}

// Attachment is a file linked to a report
type Attachment struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Report is a document summarizing an evaluation or asset, owned exclusively
// by its creator. Evaluation holds the id of the referenced evaluation and is
// required for type=evaluation.
type Report struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Type            string         `json:"type"`
	Content         string         `json:"content"`
	Evaluation      string         `json:"evaluation,omitempty"`
	Findings        string         `json:"findings"`
	Recommendations string         `json:"recommendations"`
	Status          string         `json:"status"`
	CreatedBy       string         `json:"createdBy"`
	Metadata        ReportMetadata `json:"metadata"`
	Attachments     []Attachment   `json:"attachments,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// ValidReportType reports whether t is a known report type
func ValidReportType(t string) bool {
	return t == ReportTypeEvaluation || t == ReportTypeAsset || t == ReportTypeCombined
}

// ValidReportStatus reports whether s is a known report status
func ValidReportStatus(s string) bool {
	return s == ReportDraft || s == ReportPending || s == ReportApproved
}

// ReportRepository defines creator-scoped data access for reports
type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id, creatorID string) (*Report, error)
	Update(ctx context.Context, report *Report) error
	Delete(ctx context.Context, id, creatorID string) error
	List(ctx context.Context, creatorID, reportType string) ([]*Report, error)
}
