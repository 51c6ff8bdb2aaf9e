package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/evaluatorhub/backend/internal/domain"
)

// PostgresAssetRepository implements domain.AssetRepository using PostgreSQL.
// Every read and write is scoped to the owning user.
type PostgresAssetRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAssetRepository creates a new asset repository
func NewPostgresAssetRepository(db *sql.DB, logger *slog.Logger) *PostgresAssetRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAssetRepository{
		db:     db,
		logger: logger,
	}
}

const assetColumns = `id, title, type, description, category, value, condition,
	owner_name, owner_phone, owner_email, location, created_by, created_at, updated_at`

// Create inserts a new asset
func (r *PostgresAssetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}

	query := `
		INSERT INTO assets (id, title, type, description, category, value,
			condition, owner_name, owner_phone, owner_email, location, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		asset.ID,
		asset.Title,
		asset.Type,
		asset.Description,
		nullString(asset.Category),
		asset.Value,
		asset.Condition,
		asset.OwnerName,
		asset.OwnerPhone,
		nullString(asset.OwnerEmail),
		asset.Location,
		asset.CreatedBy,
	).Scan(&asset.CreatedAt, &asset.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create asset",
			slog.String("created_by", asset.CreatedBy),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// GetByID retrieves an asset scoped by id and owner
func (r *PostgresAssetRepository) GetByID(ctx context.Context, id, ownerID string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1 AND created_by = $2`
	return r.scanAsset(r.db.QueryRowContext(ctx, query, id, ownerID))
}

// Update persists the mutable fields of an asset, scoped by id and owner
func (r *PostgresAssetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	query := `
		UPDATE assets
		SET title = $1, type = $2, description = $3, category = $4, value = $5,
			condition = $6, owner_name = $7, owner_phone = $8, owner_email = $9,
			location = $10, updated_at = now()
		WHERE id = $11 AND created_by = $12
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		asset.Title,
		asset.Type,
		asset.Description,
		nullString(asset.Category),
		asset.Value,
		asset.Condition,
		asset.OwnerName,
		asset.OwnerPhone,
		nullString(asset.OwnerEmail),
		asset.Location,
		asset.ID,
		asset.CreatedBy,
	).Scan(&asset.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to update asset: %w", err)
	}

	return nil
}

// Delete removes an asset scoped by id and owner
func (r *PostgresAssetRepository) Delete(ctx context.Context, id, ownerID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM assets WHERE id = $1 AND created_by = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
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

// List returns the owner's assets newest-first, optionally filtered by type
func (r *PostgresAssetRepository) List(ctx context.Context, ownerID, assetType string) ([]*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE created_by = $1`
	args := []any{ownerID}

	if assetType != "" && assetType != "all" {
		query += ` AND type = $2`
		args = append(args, assetType)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list assets",
			slog.String("owner", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		asset, err := r.scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}

	return assets, rows.Err()
}

func (r *PostgresAssetRepository) scanAsset(row rowScanner) (*domain.Asset, error) {
	asset := &domain.Asset{}
	var category, ownerEmail sql.NullString

	err := row.Scan(
		&asset.ID,
		&asset.Title,
		&asset.Type,
		&asset.Description,
		&category,
		&asset.Value,
		&asset.Condition,
		&asset.OwnerName,
		&asset.OwnerPhone,
		&ownerEmail,
		&asset.Location,
		&asset.CreatedBy,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}

	asset.Category = category.String
	asset.OwnerEmail = ownerEmail.String

	return asset, nil
}
