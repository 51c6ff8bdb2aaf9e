package security

import (
	"fmt"
	"log/slog"

	"github.com/evaluatorhub/backend/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermManageRecords Permission = "manage_records" // own assets/evaluations/reports
	PermManageUsers   Permission = "manage_users"   // list and delete accounts
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[string][]Permission{
	domain.RoleAdmin:     {PermManageRecords, PermManageUsers},
	domain.RoleEvaluator: {PermManageRecords},
	domain.RoleUser:      {PermManageRecords},
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role string, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission validates that a role has a specific permission
func (as *AuthorizationService) ValidatePermission(role string, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", role),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("permission denied: %s role cannot %s", role, permission)
	}
	return nil
}
