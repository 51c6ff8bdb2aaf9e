package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/evaluatorhub/backend/internal/observability/metrics"
)

// RenderPDF streams a PDF representation of the report into w. The fetch is
// owner-scoped, so a foreign or missing report fails before any rendering
// starts. Nothing is persisted.
func (s *ReportService) RenderPDF(ctx context.Context, id, creatorID string, w io.Writer) (string, error) {
	start := time.Now()

	report, err := s.reports.GetByID(ctx, id, creatorID)
	if err != nil {
		return "", err
	}

	creatorName := ""
	if creator, err := s.users.GetByID(ctx, creatorID); err == nil {
		creatorName = creator.Name
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 24)
	doc.CellFormat(0, 12, report.Title, "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 12)
	doc.CellFormat(0, 6, fmt.Sprintf("Report Type: %s", report.Type), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Created by: %s", creatorName), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Date: %s", report.CreatedAt.Format("2006-01-02")), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Status: %s", report.Status), "", 1, "L", false, 0, "")
	doc.Ln(6)

	writeSection(doc, "Content", report.Content)
	writeSection(doc, "Findings", report.Findings)
	writeSection(doc, "Recommendations", report.Recommendations)

	if report.Evaluation != "" {
		doc.SetFont("Helvetica", "U", 16)
		doc.CellFormat(0, 8, "Evaluation Details", "", 1, "L", false, 0, "")
		doc.Ln(2)
		doc.SetFont("Helvetica", "", 12)
		doc.CellFormat(0, 6, fmt.Sprintf("Evaluation ID: %s", report.Evaluation), "", 1, "L", false, 0, "")
		doc.Ln(4)
	}

	doc.Ln(8)
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 5, "Generated by Evaluator's Hub", "", 1, "C", false, 0, "")
	doc.CellFormat(0, 5, time.Now().Format("2006-01-02 15:04:05"), "", 1, "C", false, 0, "")

	if err := doc.Output(w); err != nil {
		return "", fmt.Errorf("failed to render report pdf: %w", err)
	}

	metrics.ObservePDFRender(time.Since(start))

	return fmt.Sprintf("report-%s.pdf", report.ID), nil
}

func writeSection(doc *fpdf.Fpdf, heading, body string) {
	doc.SetFont("Helvetica", "U", 16)
	doc.CellFormat(0, 8, heading, "", 1, "L", false, 0, "")
	doc.Ln(2)
	doc.SetFont("Helvetica", "", 12)
	doc.MultiCell(0, 6, body, "", "L", false)
	doc.Ln(4)
}
