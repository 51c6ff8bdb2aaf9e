package handler

import (
	"log/slog"
	"net/http"

	"github.com/evaluatorhub/backend/internal/security/middleware"
	"github.com/evaluatorhub/backend/internal/service"
)

// AssetHandler exposes the owner-scoped asset CRUD endpoints
type AssetHandler struct {
	assetService *service.AssetService
	logger       *slog.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assetService *service.AssetService, logger *slog.Logger) *AssetHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AssetHandler{
		assetService: assetService,
		logger:       logger,
	}
}

// List handles GET /api/assets?type=...
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	assets, err := h.assetService.List(r.Context(), user.ID, r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, h.logger, err, "Asset not found or access denied", "Error fetching assets")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"assets":  assets,
	})
}

// Get handles GET /api/assets/{id}
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	asset, err := h.assetService.Get(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		writeError(w, h.logger, err, "Asset not found or access denied", "Error fetching asset")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"asset":   asset,
	})
}

// Create handles POST /api/assets
func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req service.CreateAssetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	asset, err := h.assetService.Create(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, h.logger, err, "Asset not found or access denied", "Error creating asset")
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Asset created successfully",
		"asset":   asset,
	})
}

// Update handles PUT /api/assets/{id}
func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req service.UpdateAssetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	asset, err := h.assetService.Update(r.Context(), r.PathValue("id"), user.ID, req)
	if err != nil {
		writeError(w, h.logger, err, "Asset not found or access denied", "Error updating asset")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Asset updated successfully",
		"asset":   asset,
	})
}

// Delete handles DELETE /api/assets/{id}
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	if err := h.assetService.Delete(r.Context(), r.PathValue("id"), user.ID); err != nil {
		writeError(w, h.logger, err, "Asset not found or access denied", "Error deleting asset")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Asset deleted successfully",
	})
}
