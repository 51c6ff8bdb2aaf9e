package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/evaluatorhub/backend/internal/domain"
)

type memAssetRepo struct {
	byID map[string]*domain.Asset
}

func newMemAssetRepo() *memAssetRepo {
	return &memAssetRepo{byID: map[string]*domain.Asset{}}
}

func (m *memAssetRepo) Create(_ context.Context, a *domain.Asset) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAssetRepo) GetByID(_ context.Context, id, ownerID string) (*domain.Asset, error) {
	a, ok := m.byID[id]
	if !ok || a.CreatedBy != ownerID {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAssetRepo) Update(_ context.Context, a *domain.Asset) error {
	stored, ok := m.byID[a.ID]
	if !ok || stored.CreatedBy != a.CreatedBy {
		return domain.ErrNotFound
	}
	a.UpdatedAt = time.Now()
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAssetRepo) Delete(_ context.Context, id, ownerID string) error {
	a, ok := m.byID[id]
	if !ok || a.CreatedBy != ownerID {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memAssetRepo) List(_ context.Context, ownerID, assetType string) ([]*domain.Asset, error) {
	out := []*domain.Asset{}
	for _, a := range m.byID {
		if a.CreatedBy != ownerID {
			continue
		}
		if assetType != "" && assetType != "all" && a.Type != assetType {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func value(v float64) *float64 { return &v }

func str(s string) *string { return &s }

func validAssetRequest() CreateAssetRequest {
	return CreateAssetRequest{
		Title:       "Gold Ring",
		Type:        domain.AssetTypeJewelry,
		Description: "18k gold ring",
		Value:       value(1200),
		Condition:   domain.ConditionGood,
		OwnerName:   "Ada",
		OwnerPhone:  "555-0101",
		Location:    "Vault 3",
	}
}

func TestAssetCreateValidation(t *testing.T) {
	s := NewAssetService(newMemAssetRepo(), nil)
	ctx := context.Background()

	var validation domain.ValidationError

	missing := validAssetRequest()
	missing.OwnerPhone = ""
	if _, err := s.Create(ctx, "u1", missing); !errors.As(err, &validation) {
		t.Fatalf("expected validation error for missing ownerPhone, got %v", err)
	}

	badType := validAssetRequest()
	badType.Type = "spaceship"
	if _, err := s.Create(ctx, "u1", badType); !errors.As(err, &validation) {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}

	negative := validAssetRequest()
	negative.Value = value(-1)
	if _, err := s.Create(ctx, "u1", negative); !errors.As(err, &validation) {
		t.Fatalf("expected validation error for negative value, got %v", err)
	}

	badEmail := validAssetRequest()
	badEmail.OwnerEmail = "not-an-email"
	if _, err := s.Create(ctx, "u1", badEmail); !errors.As(err, &validation) {
		t.Fatalf("expected validation error for bad email, got %v", err)
	}

	// Zero is a valid value, distinguishable from a missing one
	zero := validAssetRequest()
	zero.Value = value(0)
	if _, err := s.Create(ctx, "u1", zero); err != nil {
		t.Fatalf("explicit zero value should be accepted: %v", err)
	}
}

func TestAssetOwnershipScoping(t *testing.T) {
	repo := newMemAssetRepo()
	s := NewAssetService(repo, nil)
	ctx := context.Background()

	asset, err := s.Create(ctx, "u1", validAssetRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if asset.CreatedBy != "u1" {
		t.Fatalf("expected caller as creator, got %q", asset.CreatedBy)
	}

	// Another user sees the same 404 whether the asset is foreign or absent
	if _, err := s.Get(ctx, asset.ID, "u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for foreign asset, got %v", err)
	}
	if _, err := s.Get(ctx, "missing-id", "u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for missing asset, got %v", err)
	}
	if err := s.Delete(ctx, asset.ID, "u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found deleting foreign asset, got %v", err)
	}
	if _, err := s.Update(ctx, asset.ID, "u2", UpdateAssetRequest{Title: str("Stolen")}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found updating foreign asset, got %v", err)
	}

	// The owner still sees it
	if _, err := s.Get(ctx, asset.ID, "u1"); err != nil {
		t.Fatalf("owner fetch failed: %v", err)
	}
}

func TestAssetListFiltersByType(t *testing.T) {
	repo := newMemAssetRepo()
	s := NewAssetService(repo, nil)
	ctx := context.Background()

	ring := validAssetRequest()
	if _, err := s.Create(ctx, "u1", ring); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	car := validAssetRequest()
	car.Title = "Sedan"
	car.Type = domain.AssetTypeVehicle
	if _, err := s.Create(ctx, "u1", car); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	foreign := validAssetRequest()
	if _, err := s.Create(ctx, "u2", foreign); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	all, err := s.List(ctx, "u1", "all")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 assets for u1, got %d", len(all))
	}

	vehicles, err := s.List(ctx, "u1", domain.AssetTypeVehicle)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(vehicles) != 1 || vehicles[0].Type != domain.AssetTypeVehicle {
		t.Fatalf("expected only the vehicle, got %d", len(vehicles))
	}
}

func TestAssetUpdateCannotChangeOwner(t *testing.T) {
	repo := newMemAssetRepo()
	s := NewAssetService(repo, nil)
	ctx := context.Background()

	asset, err := s.Create(ctx, "u1", validAssetRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := s.Update(ctx, asset.ID, "u1", UpdateAssetRequest{
		Title: str("Renamed Ring"),
		Value: value(1500),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != "Renamed Ring" || updated.Value != 1500 {
		t.Fatalf("expected merged changes, got %+v", updated)
	}
	if updated.CreatedBy != "u1" {
		t.Fatalf("creator must never change, got %q", updated.CreatedBy)
	}
	// Untouched fields survive a partial update
	if updated.OwnerPhone != "555-0101" || updated.Location != "Vault 3" {
		t.Fatalf("expected untouched fields to survive, got %+v", updated)
	}
}
