package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/evaluatorhub/backend/internal/domain"
	"github.com/evaluatorhub/backend/internal/infrastructure/redis"
	"github.com/evaluatorhub/backend/internal/observability/metrics"
	"github.com/evaluatorhub/backend/internal/security/auth"
	"github.com/evaluatorhub/backend/internal/security/middleware"
)

const resetTokenTTL = time.Hour

// ErrEmailDispatch signals that the reset email could not be sent; the
// just-written token state has already been rolled back.
var ErrEmailDispatch = errors.New("error sending password reset email")

// Mailer delivers transactional mail
type Mailer interface {
	Verify(ctx context.Context) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

// UserService handles accounts, sessions, and the password reset flow
type UserService struct {
	users  domain.UserRepository
	tokens *auth.TokenManager
	mailer Mailer
	cache  *redis.Client
	logger *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(users domain.UserRepository, tokens *auth.TokenManager, mailer Mailer, cache *redis.Client, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		users:  users,
		tokens: tokens,
		mailer: mailer,
		cache:  cache,
		logger: logger,
	}
}

// RegisterRequest accepts either a single name or firstName/lastName
type RegisterRequest struct {
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// AuthResult carries a fresh session token and the public user projection
type AuthResult struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

// Register creates a new active account and issues a session token
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName))
	}
	email := normalizeEmail(req.Email)

	if name == "" || email == "" || req.Password == "" {
		return nil, domain.ValidationError("Please provide all required fields")
	}
	if len(req.Password) < 6 {
		return nil, domain.ValidationError("Password must be at least 6 characters long")
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		metrics.ObserveRegistration("duplicate")
		return nil, domain.ValidationError("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, errors.New("error creating user")
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
	}

	if err := s.users.Create(ctx, user); err != nil {
		metrics.ObserveRegistration("error")
		return nil, errors.New("error creating user")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("error creating user")
	}

	metrics.ObserveRegistration("success")
	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return &AuthResult{Token: token, User: user.Public()}, nil
}

// Login authenticates by email and password. Unknown email, wrong password,
// and inactive-account outcomes are indistinguishable except for the inactive
// message, matching the store's generic 401 policy.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ValidationError("Please provide email and password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		metrics.ObserveLogin("unknown_email")
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.ObserveLogin("wrong_password")
		return nil, domain.ErrInvalidCredentials
	}

	if user.Status != domain.StatusActive {
		metrics.ObserveLogin("inactive")
		return nil, domain.ErrAccountInactive
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("failed to record last login",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, errors.New("error logging in")
	}
	s.invalidate(ctx, user.ID)

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, errors.New("error logging in")
	}

	metrics.ObserveLogin("success")
	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return &AuthResult{Token: token, User: user.Public()}, nil
}

// Profile returns the caller's own account
func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfileRequest carries optional profile changes
type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfile changes the caller's own name, email, or password and
// reissues a session token reflecting any identity change.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*AuthResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if email := normalizeEmail(req.Email); email != "" {
		user.Email = email
	}
	if req.Password != "" {
		if len(req.Password) < 6 {
			return nil, domain.ValidationError("Password must be at least 6 characters long")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.New("error updating user profile")
		}
		user.PasswordHash = string(hash)
		now := time.Now()
		user.PasswordChangedAt = &now
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.invalidate(ctx, user.ID)

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, errors.New("error updating user profile")
	}

	return &AuthResult{Token: token, User: user.Public()}, nil
}

// ListUsers returns all accounts as public projections (admin surface)
func (s *UserService) ListUsers(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// DeleteUser removes an account (admin surface)
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.logger.Info("user removed", slog.String("user_id", id))
	return nil
}

// ForgotPassword issues a single-use reset token valid for one hour and
// emails a reset link. If dispatch fails, the token fields are rolled back so
// no dangling unusable reset state remains.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ValidationError("Please provide email")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.ErrNotFound
	}

	token, err := generateResetToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", slog.String("error", err.Error()))
		return errors.New("error processing password reset request")
	}

	expires := time.Now().Add(resetTokenTTL)
	user.ResetPasswordToken = token
	user.ResetPasswordExpires = &expires
	if err := s.users.Update(ctx, user); err != nil {
		return errors.New("error processing password reset request")
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		metrics.ObserveResetEmail("error")

		// Compensating rollback: clear the token so the account is not left
		// in a request-a-reset-but-cannot-use-it state.
		user.ResetPasswordToken = ""
		user.ResetPasswordExpires = nil
		if rollbackErr := s.users.Update(ctx, user); rollbackErr != nil {
			s.logger.Error("failed to roll back reset token",
				slog.String("user_id", user.ID),
				slog.String("error", rollbackErr.Error()),
			)
		}
		return ErrEmailDispatch
	}

	metrics.ObserveResetEmail("success")
	return nil
}

// ResetPassword consumes a reset token: it must match exactly and be
// unexpired. Success rehashes the password and clears both token fields.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return domain.ValidationError("Please provide token and password")
	}
	if len(password) < 6 {
		return domain.ValidationError("Password must be at least 6 characters long")
	}

	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		return domain.ValidationError("Password reset token is invalid or has expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("error resetting password")
	}

	now := time.Now()
	user.PasswordHash = string(hash)
	user.PasswordChangedAt = &now
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = nil

	if err := s.users.Update(ctx, user); err != nil {
		return errors.New("error resetting password")
	}
	s.invalidate(ctx, user.ID)

	s.logger.Info("password reset successful", slog.String("user_id", user.ID))
	return nil
}

// invalidate drops the identity cache entry after any account mutation
func (s *UserService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, middleware.IdentityCacheKey(userID)); err != nil {
		s.logger.Debug("identity cache invalidation failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
