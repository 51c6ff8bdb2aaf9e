package handler

import (
	"log/slog"
	"net/http"

	"github.com/evaluatorhub/backend/internal/security/middleware"
	"github.com/evaluatorhub/backend/internal/service"
)

// UserHandler exposes account registration, sessions, profile management,
// the password reset flow, and the admin user surface.
type UserHandler struct {
	userService *service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Register handles POST /api/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.userService.Register(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err, "User not found", "Error creating user")
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"token":   result.Token,
		"user":    result.User,
	})
}

// Login handles POST /api/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err, "User not found", "Error logging in")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"token":   result.Token,
		"user":    result.User,
	})
}

// Profile handles GET /api/users/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, envelope{"success": false, "message": "Please authenticate"})
		return
	}

	current, err := h.userService.Profile(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err, "User not found", "Error getting user profile")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"user":    current.Public(),
	})
}

// UpdateProfile handles PUT /api/users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, envelope{"success": false, "message": "Please authenticate"})
		return
	}

	var req service.UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.userService.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, h.logger, err, "User not found", "Error updating user profile")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"token":   result.Token,
		"user":    result.User,
	})
}

// List handles GET /api/users (admin only)
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "User not found", "Error getting users")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"users":   users,
	})
}

// Delete handles DELETE /api/users/{id} (admin only)
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.logger, err, "User not found", "Error deleting user")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "User removed",
	})
}

// ForgotPassword handles POST /api/users/forgot-password
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.userService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, h.logger, err, "User not found", "Error processing password reset request")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Password reset email sent",
	})
}

// ResetPassword handles POST /api/users/reset-password
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.userService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, h.logger, err, "User not found", "Error resetting password")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Password has been reset successfully",
	})
}
