package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/evaluatorhub/backend/internal/domain"
	"github.com/evaluatorhub/backend/internal/infrastructure/redis"
	"github.com/evaluatorhub/backend/internal/security"
	"github.com/evaluatorhub/backend/internal/security/audit"
	"github.com/evaluatorhub/backend/internal/security/auth"
	"github.com/evaluatorhub/backend/internal/security/ratelimit"
)

// UserContextKey carries the authenticated *domain.User through the request context
type UserContextKey struct{}

const identityCacheTTL = 30 * time.Second

// publicPath reports whether the path is reachable without a session token
func publicPath(path string) bool {
	switch path {
	case "/api/users/register", "/api/users/login",
		"/api/users/forgot-password", "/api/users/reset-password",
		"/healthz", "/readyz", "/metrics":
		return true
	}
	return false
}

// AuthMiddleware is the session authenticator: it verifies the bearer token,
// resolves it to an active user, and attaches the identity to the request
// context. Every failure mode answers with the same generic 401.
func AuthMiddleware(tm *auth.TokenManager, users domain.UserRepository, cache *redis.Client, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// CORS preflight requests carry no credentials
			if publicPath(r.URL.Path) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				unauthorized(w)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				log.Debug("token validation failed", slog.String("error", err.Error()))
				unauthorized(w)
				return
			}

			user, err := resolveUser(r.Context(), claims.UserID, users, cache, log)
			if err != nil || user.Status != domain.StatusActive {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveUser loads the token's user, consulting the short-TTL identity cache
// first. Cache failures are ignored; the store remains authoritative.
func resolveUser(ctx context.Context, userID string, users domain.UserRepository, cache *redis.Client, log *slog.Logger) (*domain.User, error) {
	key := IdentityCacheKey(userID)

	if cache != nil {
		if raw, err := cache.Get(ctx, key); err == nil {
			var user domain.User
			if err := json.Unmarshal([]byte(raw), &user); err == nil {
				return &user, nil
			}
		}
	}

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if data, err := json.Marshal(user); err == nil {
			if err := cache.Set(ctx, key, data, identityCacheTTL); err != nil {
				log.Debug("identity cache set failed", slog.String("error", err.Error()))
			}
		}
	}

	return user, nil
}

// IdentityCacheKey is the cache key for an authenticated user lookup
func IdentityCacheKey(userID string) string {
	return "auth:user:" + userID
}

// RequireAdmin is the authorization gate layered on top of the authenticator
func RequireAdmin(authz *security.AuthorizationService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			unauthorized(w)
			return
		}
		if err := authz.ValidatePermission(user.Role, security.PermManageUsers); err != nil {
			reject(w, http.StatusForbidden, "Access denied. Admin only.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitMiddleware applies per-user limits on protected routes and strict
// per-IP limits on the public credential endpoints. It must sit inside
// AuthMiddleware so the identity is on the context when the key is derived.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPath(r.URL.Path) {
				if strings.HasPrefix(r.URL.Path, "/api/users/") {
					ip := clientIP(r)
					if !limiter.AllowStrict(ip, 10, time.Minute) {
						log.Warn("rate limit exceeded on credential endpoint",
							slog.String("ip", ip),
							slog.String("path", r.URL.Path),
						)
						reject(w, http.StatusTooManyRequests, "Too many requests")
						return
					}
				}
				next.ServeHTTP(w, r)
				return
			}

			userID := ""
			if u := GetUserFromContext(r.Context()); u != nil {
				userID = u.ID
			}
			if !limiter.Allow(userID) {
				log.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.String("path", r.URL.Path),
				)
				reject(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records mutating resource actions
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/") && !publicPath(r.URL.Path) {
				switch r.Method {
				case http.MethodPost, http.MethodPut, http.MethodDelete:
					userID := ""
					if u := GetUserFromContext(r.Context()); u != nil {
						userID = u.ID
					}
					auditLog.LogAction(r.Context(), userID, strings.ToLower(r.Method), r.URL.Path, "initiated")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext returns the authenticated user or nil
func GetUserFromContext(ctx context.Context) *domain.User {
	if u := ctx.Value(UserContextKey{}); u != nil {
		return u.(*domain.User)
	}
	return nil
}

func unauthorized(w http.ResponseWriter) {
	reject(w, http.StatusUnauthorized, "Please authenticate")
}

// reject writes the standard failure envelope with a JSON content type
func reject(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
