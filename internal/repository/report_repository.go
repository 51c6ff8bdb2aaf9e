package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/evaluatorhub/backend/internal/domain"
)

// PostgresReportRepository implements domain.ReportRepository using PostgreSQL
type PostgresReportRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresReportRepository creates a new report repository
func NewPostgresReportRepository(db *sql.DB, logger *slog.Logger) *PostgresReportRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReportRepository{
		db:     db,
		logger: logger,
	}
}

const reportColumns = `id, title, type, content, evaluation, findings,
	recommendations, status, created_by, version, last_modified, attachments, created_at`

// Create inserts a new report
func (r *PostgresReportRepository) Create(ctx context.Context, report *domain.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}

	attachments, err := marshalAttachments(report.Attachments)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO reports (id, title, type, content, evaluation, findings,
			recommendations, status, created_by, version, last_modified, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	err = r.db.QueryRowContext(ctx, query,
		report.ID,
		report.Title,
		report.Type,
		report.Content,
		nullString(report.Evaluation),
		report.Findings,
		report.Recommendations,
		report.Status,
		report.CreatedBy,
		report.Metadata.Version,
		report.Metadata.LastModified,
		attachments,
	).Scan(&report.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create report",
			slog.String("created_by", report.CreatedBy),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// GetByID retrieves a report scoped by id and creator
func (r *PostgresReportRepository) GetByID(ctx context.Context, id, creatorID string) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports
		WHERE id = $1 AND created_by = $2`
	return r.scanReport(r.db.QueryRowContext(ctx, query, id, creatorID))
}

// Update persists the mutable fields of a report, scoped by id and creator
func (r *PostgresReportRepository) Update(ctx context.Context, report *domain.Report) error {
	attachments, err := marshalAttachments(report.Attachments)
	if err != nil {
		return err
	}

	query := `
		UPDATE reports
		SET title = $1, content = $2, evaluation = $3, findings = $4,
			recommendations = $5, status = $6, version = $7, last_modified = $8,
			attachments = $9
		WHERE id = $10 AND created_by = $11
		RETURNING id
	`

	var updatedID string
	err = r.db.QueryRowContext(ctx, query,
		report.Title,
		report.Content,
		nullString(report.Evaluation),
		report.Findings,
		report.Recommendations,
		report.Status,
		report.Metadata.Version,
		report.Metadata.LastModified,
		attachments,
		report.ID,
		report.CreatedBy,
	).Scan(&updatedID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to update report: %w", err)
	}

	return nil
}

// Delete removes a report scoped by id and creator
func (r *PostgresReportRepository) Delete(ctx context.Context, id, creatorID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM reports WHERE id = $1 AND created_by = $2`, id, creatorID)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// List returns the creator's reports newest-first, optionally filtered by type
func (r *PostgresReportRepository) List(ctx context.Context, creatorID, reportType string) ([]*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE created_by = $1`
	args := []any{creatorID}

	if reportType != "" && reportType != "all" {
		query += ` AND type = $2`
		args = append(args, reportType)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list reports",
			slog.String("created_by", creatorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.Report
	for rows.Next() {
		report, err := r.scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

func (r *PostgresReportRepository) scanReport(row rowScanner) (*domain.Report, error) {
	report := &domain.Report{}
	var evaluation sql.NullString
	var attachments []byte

	err := row.Scan(
		&report.ID,
		&report.Title,
		&report.Type,
		&report.Content,
		&evaluation,
		&report.Findings,
		&report.Recommendations,
		&report.Status,
		&report.CreatedBy,
		&report.Metadata.Version,
		&report.Metadata.LastModified,
		&attachments,
		&report.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	report.Evaluation = evaluation.String
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &report.Attachments); err != nil {
			return nil, fmt.Errorf("failed to decode report attachments: %w", err)
		}
	}

	return report, nil
}

func marshalAttachments(attachments []domain.Attachment) ([]byte, error) {
	if attachments == nil {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(attachments)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report attachments: %w", err)
	}
	return data, nil
}
