package domain

import (
	"context"
	"time"
)

// Asset types
const (
	AssetTypeProperty = "property"
	AssetTypeVehicle  = "vehicle"
	AssetTypeJewelry  = "jewelry"
	AssetTypeMetal    = "metal"
	AssetTypeOther    = "other"
)

// Asset conditions
const (
	ConditionExcellent = "excellent"
	ConditionGood      = "good"
	ConditionFair      = "fair"
	ConditionPoor      = "poor"
)

// Asset is a physical item under evaluation, owned exclusively by the user
// who created it.
type Asset struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Value       float64   `json:"value"`
	Condition   string    `json:"condition"`
	OwnerName   string    `json:"ownerName"`
	OwnerPhone  string    `json:"ownerPhone"`
	OwnerEmail  string    `json:"ownerEmail,omitempty"`
	Location    string    `json:"location"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ValidAssetType reports whether t is a known asset type
func ValidAssetType(t string) bool {
	switch t {
	case AssetTypeProperty, AssetTypeVehicle, AssetTypeJewelry, AssetTypeMetal, AssetTypeOther:
		return true
	}
	return false
}

// ValidCondition reports whether c is a known asset condition
func ValidCondition(c string) bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// AssetRepository defines owner-scoped data access for assets. Reads and
// writes never return a record whose created_by differs from ownerID.
type AssetRepository interface {
	Create(ctx context.Context, asset *Asset) error
	GetByID(ctx context.Context, id, ownerID string) (*Asset, error)
	Update(ctx context.Context, asset *Asset) error
	Delete(ctx context.Context, id, ownerID string) error
	List(ctx context.Context, ownerID, assetType string) ([]*Asset, error)
}
