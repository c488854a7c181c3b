package ports

import (
	"context"
	"io"

	"github.com/talentgate/account-service/internal/core/domain"
)

// Profile is the caller's own profile plus workflow state derived at read time.
type Profile struct {
	domain.PublicUser
	PendingApproval bool                  `json:"pendingApproval"`
	PendingChanges  domain.ProfileChanges `json:"pendingChanges,omitempty"`
}

// PictureUpload describes an uploaded profile picture.
type PictureUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProfileService is the profile update workflow.
type ProfileService interface {
	GetProfile(ctx context.Context, who domain.Identity) (*Profile, error)
	// SubmitUpdate files a pending request. picture is optional; when present it is
	// stored first and its reference becomes the requested profilePicture.
	SubmitUpdate(ctx context.Context, who domain.Identity, changes domain.ProfileChanges, picture *PictureUpload) (*domain.ProfileUpdateRequest, error)
	DeletePicture(ctx context.Context, who domain.Identity) (*domain.PublicUser, error)
	UploadPicture(ctx context.Context, who domain.Identity, upload PictureUpload) (string, error)
	ListPending(ctx context.Context, who domain.Identity) ([]*domain.ProfileUpdateRequest, error)
	Approve(ctx context.Context, who domain.Identity, requestID string) (*domain.ProfileUpdateRequest, error)
	Decline(ctx context.Context, who domain.Identity, requestID string) (*domain.ProfileUpdateRequest, error)
}
