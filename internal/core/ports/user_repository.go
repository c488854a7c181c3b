package ports

import (
	"context"

	"github.com/talentgate/account-service/internal/core/domain"
)

// UserRepository is the credential store. Implementations return
// domain.ErrUserNotFound for unknown ids/emails and domain.ErrDuplicateEmail
// when Create hits the unique email constraint.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// ApplyUpdate sets exactly the fields present in changes and returns the updated user.
	ApplyUpdate(ctx context.Context, id string, changes domain.ProfileChanges) (*domain.User, error)
	// UnsetField clears an optional field (currently only the profile picture).
	UnsetField(ctx context.Context, id, field string) (*domain.User, error)
}
