package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/bakehouse/bakehouse-backend/internal/modules/user"
	"github.com/dgrijalva/jwt-go"
)

type contextKey struct{}

var claimsKey contextKey

// ClaimsFromContext returns the session claims placed by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok
}

// Middleware gates routes on a valid session token and the user's custom_role.
type Middleware struct {
	jwtKey []byte
}

func NewMiddleware(jwtKey []byte) *Middleware {
	return &Middleware{jwtKey: jwtKey}
}

// Authenticate parses the bearer token and puts the session claims on the
// request context. Requests without a valid token get 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &sessionClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return m.jwtKey, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, &Claims{
			UserID: claims.Subject,
			Role:   user.Role(claims.Role),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows the request through only when the session role is one of
// the given roles. Admins pass every gate.
func (m *Middleware) RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			if claims.Role == user.RoleAdmin {
				next.ServeHTTP(w, r)
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "insufficient role", http.StatusForbidden)
		})
	}
}

// RequireAdmin is shorthand for RequireRole with no extra roles.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireRole()(next)
}
