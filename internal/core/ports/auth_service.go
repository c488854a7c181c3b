package ports

import (
	"context"

	"github.com/talentgate/account-service/internal/core/domain"
)

// RegisterInput carries the fields accepted at self-registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	State    string
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token string
	User  domain.PublicUser
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.PublicUser, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// TokenVerifier resolves a session token into an Identity.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}
