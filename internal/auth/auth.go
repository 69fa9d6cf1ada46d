// Package auth provides JWT bearer authentication and role checks for the
// API. Tokens are HMAC-signed with the service secret; the subject claim is
// the user id.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sehatnabha/telecare/pkg/logging"
)

type contextKey string

const (
	userIDKey   contextKey = "authUserID"
	userRoleKey contextKey = "authUserRole"
)

// VerifyToken enforces a Bearer JWT on the wrapped routes and stores the
// subject (user id) in the request context.
func VerifyToken(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			claims := jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.Subject == "" {
				http.Error(w, `{"error": "Invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ErrUnknownUser is returned by a RoleResolver when no account exists for
// the authenticated subject.
var ErrUnknownUser = errors.New("auth: unknown user")

// RoleResolver looks up the current role for a user id. The user store
// provides an adapter; keeping the interface here means this package never
// depends on the store's types.
type RoleResolver interface {
	RoleOf(ctx context.Context, userID string) (string, error)
}

// CheckRole loads the authenticated user's role and rejects the request
// unless it is one of the allowed roles. The role read goes through the
// resolver on every request so demotions take effect immediately, not at
// token expiry.
func CheckRole(resolver RoleResolver, logger *logging.Logger, roles ...string) func(http.Handler) http.Handler {
	if resolver == nil {
		panic("auth: role resolver required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserID(r.Context())
			if !ok {
				http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
				return
			}

			role, err := resolver.RoleOf(r.Context(), userID)
			if err != nil {
				if errors.Is(err, ErrUnknownUser) {
					http.Error(w, `{"error": "User not found"}`, http.StatusForbidden)
					return
				}
				logger.Error("role check failed", "error", err, "user_id", userID)
				http.Error(w, `{"error": "Error checking user role"}`, http.StatusInternalServerError)
				return
			}
			if !allowed[role] {
				http.Error(w, `{"error": "Insufficient permissions"}`, http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), userRoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserID returns a context carrying the authenticated user id. Exposed
// for handler tests and internal callers acting on behalf of a user.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated user id stored by VerifyToken.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// Role returns the role stored by CheckRole, when the route used it.
func Role(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(userRoleKey).(string)
	return role, ok
}

// IssueToken mints a signed token for the user id. Used by tests and
// operational tooling; the production login flow lives outside this service.
func IssueToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
