package ports

import (
	"context"
	"time"

	"github.com/autox/marketplace-client/internal/core/domain"
)

// RegisterInput carries the fields accepted by /auth/register.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	District string
	Role     domain.Role
}

// ProfileUpdate carries the optional fields accepted by /auth/profile.
// Nil pointers leave the stored value unchanged.
type ProfileUpdate struct {
	Name     *string
	Phone    *string
	District *string
}

// Claims is the verified content of a bearer token.
type Claims struct {
	UserID    string
	Email     string
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Authenticate(ctx context.Context, token string) (*Claims, error)
	Logout(ctx context.Context, claims Claims) error
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}
