package service

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/evaluatorhub/backend/internal/domain"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// AssetService handles owner-scoped asset CRUD
type AssetService struct {
	assets domain.AssetRepository
	logger *slog.Logger
}

// NewAssetService creates a new asset service
func NewAssetService(assets domain.AssetRepository, logger *slog.Logger) *AssetService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AssetService{
		assets: assets,
		logger: logger,
	}
}

// List returns the caller's assets, optionally filtered by type
func (s *AssetService) List(ctx context.Context, ownerID, assetType string) ([]*domain.Asset, error) {
	return s.assets.List(ctx, ownerID, assetType)
}

// Get returns a single asset if it exists and belongs to the caller
func (s *AssetService) Get(ctx context.Context, id, ownerID string) (*domain.Asset, error) {
	return s.assets.GetByID(ctx, id, ownerID)
}

// CreateAssetRequest carries the client-supplied asset fields. Value is a
// pointer so a missing field is distinguishable from an explicit zero.
type CreateAssetRequest struct {
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Value       *float64 `json:"value"`
	Condition   string   `json:"condition"`
	OwnerName   string   `json:"ownerName"`
	OwnerPhone  string   `json:"ownerPhone"`
	OwnerEmail  string   `json:"ownerEmail"`
	Location    string   `json:"location"`
}

// Create validates and stores a new asset. The owning user is always the
// caller; any creator value in the request body is ignored.
func (s *AssetService) Create(ctx context.Context, ownerID string, req CreateAssetRequest) (*domain.Asset, error) {
	if req.Title == "" || req.Type == "" || req.Description == "" || req.Value == nil ||
		req.Condition == "" || req.OwnerName == "" || req.OwnerPhone == "" || req.Location == "" {
		return nil, domain.ValidationError("Please provide all required fields")
	}
	if !domain.ValidAssetType(req.Type) {
		return nil, domain.ValidationError("Invalid asset type")
	}
	if !domain.ValidCondition(req.Condition) {
		return nil, domain.ValidationError("Invalid asset condition")
	}
	if *req.Value < 0 {
		return nil, domain.ValidationError("Value must not be negative")
	}
	if req.OwnerEmail != "" && !emailPattern.MatchString(req.OwnerEmail) {
		return nil, domain.ValidationError("Please enter a valid email")
	}

	asset := &domain.Asset{
		Title:       req.Title,
		Type:        req.Type,
		Description: req.Description,
		Category:    req.Category,
		Value:       *req.Value,
		Condition:   req.Condition,
		OwnerName:   req.OwnerName,
		OwnerPhone:  req.OwnerPhone,
		OwnerEmail:  req.OwnerEmail,
		Location:    req.Location,
		CreatedBy:   ownerID,
	}

	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, err
	}

	s.logger.Info("asset created",
		slog.String("asset_id", asset.ID),
		slog.String("owner", ownerID),
	)

	return asset, nil
}

// UpdateAssetRequest carries optional field changes; nil means "leave as is"
type UpdateAssetRequest struct {
	Title       *string  `json:"title"`
	Type        *string  `json:"type"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Value       *float64 `json:"value"`
	Condition   *string  `json:"condition"`
	OwnerName   *string  `json:"ownerName"`
	OwnerPhone  *string  `json:"ownerPhone"`
	OwnerEmail  *string  `json:"ownerEmail"`
	Location    *string  `json:"location"`
}

// Update merges the supplied fields into the stored asset. Fields outside
// the allow-list (id, createdBy, timestamps) cannot be changed.
func (s *AssetService) Update(ctx context.Context, id, ownerID string, req UpdateAssetRequest) (*domain.Asset, error) {
	asset, err := s.assets.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		asset.Title = *req.Title
	}
	if req.Type != nil {
		if !domain.ValidAssetType(*req.Type) {
			return nil, domain.ValidationError("Invalid asset type")
		}
		asset.Type = *req.Type
	}
	if req.Description != nil {
		asset.Description = *req.Description
	}
	if req.Category != nil {
		asset.Category = *req.Category
	}
	if req.Value != nil {
		if *req.Value < 0 {
			return nil, domain.ValidationError("Value must not be negative")
		}
		asset.Value = *req.Value
	}
	if req.Condition != nil {
		if !domain.ValidCondition(*req.Condition) {
			return nil, domain.ValidationError("Invalid asset condition")
		}
		asset.Condition = *req.Condition
	}
	if req.OwnerName != nil {
		asset.OwnerName = *req.OwnerName
	}
	if req.OwnerPhone != nil {
		asset.OwnerPhone = *req.OwnerPhone
	}
	if req.OwnerEmail != nil {
		if *req.OwnerEmail != "" && !emailPattern.MatchString(*req.OwnerEmail) {
			return nil, domain.ValidationError("Please enter a valid email")
		}
		asset.OwnerEmail = *req.OwnerEmail
	}
	if req.Location != nil {
		asset.Location = *req.Location
	}

	if err := s.assets.Update(ctx, asset); err != nil {
		return nil, err
	}

	return asset, nil
}

// Delete removes an asset if it exists and belongs to the caller
func (s *AssetService) Delete(ctx context.Context, id, ownerID string) error {
	return s.assets.Delete(ctx, id, ownerID)
}
