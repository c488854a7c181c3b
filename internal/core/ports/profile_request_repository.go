package ports

import (
	"context"
	"time"

	"github.com/talentgate/account-service/internal/core/domain"
)

// ProfileRequestRepository persists profile update requests.
type ProfileRequestRepository interface {
	// Create inserts a pending request. The store enforces at most one pending
	// request per user and returns domain.ErrPendingRequestExists otherwise.
	Create(ctx context.Context, req *domain.ProfileUpdateRequest) (*domain.ProfileUpdateRequest, error)

	// FindPendingByUser returns the user's pending request, or nil when there is none.
	FindPendingByUser(ctx context.Context, userID string) (*domain.ProfileUpdateRequest, error)

	// ListPending returns every pending request, oldest first.
	ListPending(ctx context.Context) ([]*domain.ProfileUpdateRequest, error)

	// Resolve moves a request from pending to status only if it is still pending
	// (compare-and-set). A missing or already-resolved request yields
	// domain.ErrRequestNotFound.
	Resolve(ctx context.Context, id string, status domain.RequestStatus, resolvedBy string, at time.Time) (*domain.ProfileUpdateRequest, error)
}
