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

// PostgresEvaluationRepository implements domain.EvaluationRepository using
// PostgreSQL. Nested client/details/criteria structures live in JSONB columns.
type PostgresEvaluationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresEvaluationRepository creates a new evaluation repository
func NewPostgresEvaluationRepository(db *sql.DB, logger *slog.Logger) *PostgresEvaluationRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEvaluationRepository{
		db:     db,
		logger: logger,
	}
}

const evaluationColumns = `id, title, description, category, evaluator, client,
	status, details, total_score, report_generated, criteria, created_at, updated_at`

// Create inserts a new evaluation
func (r *PostgresEvaluationRepository) Create(ctx context.Context, evaluation *domain.Evaluation) error {
	if evaluation.ID == "" {
		evaluation.ID = uuid.NewString()
	}

	client, details, criteria, err := marshalEvaluationJSON(evaluation)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO evaluations (id, title, description, category, evaluator,
			client, status, details, total_score, report_generated, criteria)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		evaluation.ID,
		evaluation.Title,
		evaluation.Description,
		evaluation.Category,
		evaluation.Evaluator,
		client,
		evaluation.Status,
		details,
		evaluation.TotalScore,
		evaluation.ReportGenerated,
		criteria,
	).Scan(&evaluation.CreatedAt, &evaluation.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create evaluation",
			slog.String("evaluator", evaluation.Evaluator),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create evaluation: %w", err)
	}

	return nil
}

// GetByID retrieves an evaluation scoped by id and evaluator
func (r *PostgresEvaluationRepository) GetByID(ctx context.Context, id, evaluatorID string) (*domain.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations
		WHERE id = $1 AND evaluator = $2`
	return r.scanEvaluation(r.db.QueryRowContext(ctx, query, id, evaluatorID))
}

// Update persists the mutable fields of an evaluation, scoped by id and evaluator
func (r *PostgresEvaluationRepository) Update(ctx context.Context, evaluation *domain.Evaluation) error {
	client, details, criteria, err := marshalEvaluationJSON(evaluation)
	if err != nil {
		return err
	}

	query := `
		UPDATE evaluations
		SET title = $1, description = $2, category = $3, client = $4, status = $5,
			details = $6, total_score = $7, report_generated = $8, criteria = $9,
			updated_at = now()
		WHERE id = $10 AND evaluator = $11
		RETURNING updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		evaluation.Title,
		evaluation.Description,
		evaluation.Category,
		client,
		evaluation.Status,
		details,
		evaluation.TotalScore,
		evaluation.ReportGenerated,
		criteria,
		evaluation.ID,
		evaluation.Evaluator,
	).Scan(&evaluation.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to update evaluation: %w", err)
	}

	return nil
}

// Delete removes an evaluation scoped by id and evaluator
func (r *PostgresEvaluationRepository) Delete(ctx context.Context, id, evaluatorID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM evaluations WHERE id = $1 AND evaluator = $2`, id, evaluatorID)
	if err != nil {
		return fmt.Errorf("failed to delete evaluation: %w", err)
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

// List returns the evaluator's evaluations newest-first
func (r *PostgresEvaluationRepository) List(ctx context.Context, evaluatorID string) ([]*domain.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations
		WHERE evaluator = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, evaluatorID)
	if err != nil {
		r.logger.Error("failed to list evaluations",
			slog.String("evaluator", evaluatorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []*domain.Evaluation
	for rows.Next() {
		evaluation, err := r.scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, evaluation)
	}

	return evaluations, rows.Err()
}

func (r *PostgresEvaluationRepository) scanEvaluation(row rowScanner) (*domain.Evaluation, error) {
	evaluation := &domain.Evaluation{}
	var client, details, criteria []byte

	err := row.Scan(
		&evaluation.ID,
		&evaluation.Title,
		&evaluation.Description,
		&evaluation.Category,
		&evaluation.Evaluator,
		&client,
		&evaluation.Status,
		&details,
		&evaluation.TotalScore,
		&evaluation.ReportGenerated,
		&criteria,
		&evaluation.CreatedAt,
		&evaluation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan evaluation: %w", err)
	}

	if err := json.Unmarshal(client, &evaluation.Client); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation client: %w", err)
	}
	if err := json.Unmarshal(details, &evaluation.Details); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation details: %w", err)
	}
	if len(criteria) > 0 {
		if err := json.Unmarshal(criteria, &evaluation.Criteria); err != nil {
			return nil, fmt.Errorf("failed to decode evaluation criteria: %w", err)
		}
	}

	return evaluation, nil
}

func marshalEvaluationJSON(evaluation *domain.Evaluation) (client, details, criteria []byte, err error) {
	client, err = json.Marshal(evaluation.Client)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode evaluation client: %w", err)
	}
	details, err = json.Marshal(evaluation.Details)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode evaluation details: %w", err)
	}
	if evaluation.Criteria == nil {
		criteria = []byte("[]")
	} else {
		criteria, err = json.Marshal(evaluation.Criteria)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to encode evaluation criteria: %w", err)
		}
	}
	return client, details, criteria, nil
}
