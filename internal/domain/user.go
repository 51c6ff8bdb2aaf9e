package domain

import (
	"context"
	"time"
)

// User roles
const (
	RoleAdmin     = "admin"
	RoleEvaluator = "evaluator"
	RoleUser      = "user"
)

// User statuses
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// User represents a system user
type User struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"` // unique, stored lowercase
	PasswordHash         string     `json:"-"`     // bcrypt hash, never serialized
	Role                 string     `json:"role"`
	Status               string     `json:"status"`
	LastLogin            *time.Time `json:"lastLogin,omitempty"`
	PasswordChangedAt    *time.Time `json:"passwordChangedAt,omitempty"`
	ResetPasswordToken   string     `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// PublicUser is the outward projection of a user account
type PublicUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// Public returns the serializable projection of the user
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Status: u.Status,
	}
}

// ValidRole reports whether r is a known user role
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleEvaluator || r == RoleUser
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByResetToken(ctx context.Context, token string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*User, error)
	ClearExpiredResetTokens(ctx context.Context, cutoff time.Time) (int64, error)
}
