package auth

import (
	"context"

	"github.com/bakehouse/bakehouse-backend/internal/modules/user"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login verifies the credentials and returns a signed session token.
	Login(ctx context.Context, email, password string) (string, error)

	// Me returns the user record behind an authenticated session.
	Me(ctx context.Context, userID string) (*user.User, error)
}

// Claims is the decoded session placed on the request context by the
// Authenticate middleware.
type Claims struct {
	UserID string
	Role   user.Role
}
