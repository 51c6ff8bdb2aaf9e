package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/evaluatorhub/backend/internal/domain"
)

type memEvaluationRepo struct {
	byID map[string]*domain.Evaluation
}

func newMemEvaluationRepo() *memEvaluationRepo {
	return &memEvaluationRepo{byID: map[string]*domain.Evaluation{}}
}

func (m *memEvaluationRepo) Create(_ context.Context, e *domain.Evaluation) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	m.byID[e.ID] = &cp
	return nil
}

func (m *memEvaluationRepo) GetByID(_ context.Context, id, evaluatorID string) (*domain.Evaluation, error) {
	e, ok := m.byID[id]
	if !ok || e.Evaluator != evaluatorID {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memEvaluationRepo) Update(_ context.Context, e *domain.Evaluation) error {
	stored, ok := m.byID[e.ID]
	if !ok || stored.Evaluator != e.Evaluator {
		return domain.ErrNotFound
	}
	e.UpdatedAt = time.Now()
	cp := *e
	m.byID[e.ID] = &cp
	return nil
}

func (m *memEvaluationRepo) Delete(_ context.Context, id, evaluatorID string) error {
	e, ok := m.byID[id]
	if !ok || e.Evaluator != evaluatorID {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memEvaluationRepo) List(_ context.Context, evaluatorID string) ([]*domain.Evaluation, error) {
	out := []*domain.Evaluation{}
	for _, e := range m.byID {
		if e.Evaluator == evaluatorID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memReportRepo struct {
	byID map[string]*domain.Report
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{byID: map[string]*domain.Report{}}
}

func (m *memReportRepo) Create(_ context.Context, r *domain.Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now()
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memReportRepo) GetByID(_ context.Context, id, creatorID string) (*domain.Report, error) {
	r, ok := m.byID[id]
	if !ok || r.CreatedBy != creatorID {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReportRepo) Update(_ context.Context, r *domain.Report) error {
	stored, ok := m.byID[r.ID]
	if !ok || stored.CreatedBy != r.CreatedBy {
		return domain.ErrNotFound
	}
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memReportRepo) Delete(_ context.Context, id, creatorID string) error {
	r, ok := m.byID[id]
	if !ok || r.CreatedBy != creatorID {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memReportRepo) List(_ context.Context, creatorID, reportType string) ([]*domain.Report, error) {
	out := []*domain.Report{}
	for _, r := range m.byID {
		if r.CreatedBy != creatorID {
			continue
		}
		if reportType != "" && reportType != "all" && r.Type != reportType {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

type reportFixture struct {
	service     *ReportService
	reports     *memReportRepo
	evaluations *memEvaluationRepo
	users       *memUserRepo
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	reports := newMemReportRepo()
	evaluations := newMemEvaluationRepo()
	users := newMemUserRepo()
	return &reportFixture{
		service:     NewReportService(reports, evaluations, users, nil),
		reports:     reports,
		evaluations: evaluations,
		users:       users,
	}
}

func (f *reportFixture) seedEvaluation(t *testing.T, evaluatorID string) *domain.Evaluation {
	t.Helper()
	e := &domain.Evaluation{
		Title:       "Estate valuation",
		Description: "Full walkthrough",
		Category:    domain.CategoryProperty,
		Evaluator:   evaluatorID,
		Client:      domain.Client{Name: "Acme", Contact: "555-0199"},
		Status:      domain.EvaluationPending,
	}
	if err := f.evaluations.Create(context.Background(), e); err != nil {
		t.Fatalf("seed evaluation failed: %v", err)
	}
	return e
}

func validReportRequest(evaluationID string) CreateReportRequest {
	return CreateReportRequest{
		Title:           "Quarterly valuation",
		Type:            domain.ReportTypeEvaluation,
		Content:         "Summary of the valuation",
		Evaluation:      evaluationID,
		Findings:        "Condition matches record",
		Recommendations: "Reassess in 12 months",
	}
}

func TestReportCreateRequiresOwnedEvaluation(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	eval := f.seedEvaluation(t, "u2") // belongs to someone else

	if _, err := f.service.Create(ctx, "u1", validReportRequest(eval.ID)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for foreign evaluation, got %v", err)
	}
	if _, err := f.service.Create(ctx, "u1", validReportRequest("missing-id")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for missing evaluation, got %v", err)
	}
	if len(f.reports.byID) != 0 {
		t.Fatalf("no report should be persisted after a failed create")
	}

	// An evaluation is mandatory for type=evaluation
	var validation domain.ValidationError
	if _, err := f.service.Create(ctx, "u1", validReportRequest("")); !errors.As(err, &validation) {
		t.Fatalf("expected validation error for missing evaluation, got %v", err)
	}

	// An asset report needs no evaluation reference
	assetReport := validReportRequest("")
	assetReport.Type = domain.ReportTypeAsset
	report, err := f.service.Create(ctx, "u1", assetReport)
	if err != nil {
		t.Fatalf("asset report create failed: %v", err)
	}
	if report.Status != domain.ReportDraft {
		t.Fatalf("new reports start as draft, got %q", report.Status)
	}
	if report.Metadata.Version != 1 {
		t.Fatalf("new reports start at version 1, got %d", report.Metadata.Version)
	}
}

func TestReportUpdateBumpsVersion(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	eval := f.seedEvaluation(t, "u1")
	report, err := f.service.Create(ctx, "u1", validReportRequest(eval.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	firstModified := report.Metadata.LastModified

	time.Sleep(5 * time.Millisecond)
	updated, err := f.service.Update(ctx, report.ID, "u1", UpdateReportRequest{Findings: str("Revised findings")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Metadata.Version != 2 {
		t.Fatalf("expected version 2, got %d", updated.Metadata.Version)
	}
	if !updated.Metadata.LastModified.After(firstModified) {
		t.Fatalf("lastModified must advance on update")
	}
	if updated.Findings != "Revised findings" {
		t.Fatalf("expected merged findings, got %q", updated.Findings)
	}

	// Every update bumps the version, even a no-op one
	again, err := f.service.Update(ctx, report.ID, "u1", UpdateReportRequest{})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if again.Metadata.Version != 3 {
		t.Fatalf("expected version 3, got %d", again.Metadata.Version)
	}
}

func TestApprovedReportIsImmutable(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	eval := f.seedEvaluation(t, "u1")
	report, err := f.service.Create(ctx, "u1", validReportRequest(eval.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	approved := domain.ReportApproved
	if _, err := f.service.Update(ctx, report.ID, "u1", UpdateReportRequest{Status: &approved}); err != nil {
		t.Fatalf("approving failed: %v", err)
	}

	var validation domain.ValidationError
	if _, err := f.service.Update(ctx, report.ID, "u1", UpdateReportRequest{Findings: str("Late edit")}); !errors.As(err, &validation) {
		t.Fatalf("expected validation error updating approved report, got %v", err)
	}
	if err := f.service.Delete(ctx, report.ID, "u1"); !errors.As(err, &validation) {
		t.Fatalf("expected validation error deleting approved report, got %v", err)
	}

	// Still fetchable and unchanged
	stored, err := f.service.Get(ctx, report.ID, "u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Findings != "Condition matches record" {
		t.Fatalf("approved report content must not change, got %q", stored.Findings)
	}
}

func TestReportUpdateRevalidatesEvaluation(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	mine := f.seedEvaluation(t, "u1")
	theirs := f.seedEvaluation(t, "u2")

	report, err := f.service.Create(ctx, "u1", validReportRequest(mine.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.service.Update(ctx, report.ID, "u1", UpdateReportRequest{Evaluation: str(theirs.ID)}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found when repointing at a foreign evaluation, got %v", err)
	}

	stored, err := f.service.Get(ctx, report.ID, "u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Evaluation != mine.ID {
		t.Fatalf("failed update must not change the evaluation reference")
	}
	if stored.Metadata.Version != 1 {
		t.Fatalf("failed update must not bump the version, got %d", stored.Metadata.Version)
	}
}

func TestReportOwnershipScoping(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	eval := f.seedEvaluation(t, "u1")
	report, err := f.service.Create(ctx, "u1", validReportRequest(eval.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.service.Get(ctx, report.ID, "u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for foreign report, got %v", err)
	}
	if err := f.service.Delete(ctx, report.ID, "u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found deleting foreign report, got %v", err)
	}
}

func TestRenderPDF(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	creator := &domain.User{Name: "Ada", Email: "ada@example.com", Role: domain.RoleUser, Status: domain.StatusActive}
	if err := f.users.Create(ctx, creator); err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	eval := f.seedEvaluation(t, creator.ID)
	report, err := f.service.Create(ctx, creator.ID, validReportRequest(eval.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var buf bytes.Buffer
	filename, err := f.service.RenderPDF(ctx, report.ID, creator.ID, &buf)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if filename != "report-"+report.ID+".pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %q", buf.Bytes()[:min(16, buf.Len())])
	}

	// Foreign reports render nothing
	var other bytes.Buffer
	if _, err := f.service.RenderPDF(ctx, report.ID, "u2", &other); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for foreign render, got %v", err)
	}
	if other.Len() != 0 {
		t.Fatalf("no bytes should be written on a failed render")
	}
}
