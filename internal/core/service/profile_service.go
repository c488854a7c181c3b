package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/talentgate/account-service/internal/core/domain"
	"github.com/talentgate/account-service/internal/core/ports"
)

const (
	DefaultMaxPictureBytes = 5 << 20
	pictureFolder          = "profile_pics"
	discardTimeout         = 5 * time.Second
)

var pictureTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

// ProfileService runs the profile update workflow: users file change requests,
// admins approve or decline them, and only approval touches the user record.
type ProfileService struct {
	users           ports.UserRepository
	requests        ports.ProfileRequestRepository
	tx              ports.Transactor
	blobs           ports.BlobStore
	log             zerolog.Logger
	maxPictureBytes int64
	now             func() time.Time
}

func NewProfileService(
	users ports.UserRepository,
	requests ports.ProfileRequestRepository,
	tx ports.Transactor,
	blobs ports.BlobStore,
	maxPictureBytes int64,
	log zerolog.Logger,
) *ProfileService {
	if maxPictureBytes <= 0 {
		maxPictureBytes = DefaultMaxPictureBytes
	}
	return &ProfileService{
		users:           users,
		requests:        requests,
		tx:              tx,
		blobs:           blobs,
		log:             log,
		maxPictureBytes: maxPictureBytes,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// GetProfile returns the caller's profile. pendingApproval is recomputed from the
// request store on every call.
func (s *ProfileService) GetProfile(ctx context.Context, who domain.Identity) (*ports.Profile, error) {
	user, err := s.users.FindByID(ctx, who.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	pending, err := s.requests.FindPendingByUser(ctx, who.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile: pending lookup: %w", err)
	}

	profile := &ports.Profile{PublicUser: user.Public()}
	if pending != nil {
		profile.PendingApproval = true
		profile.PendingChanges = pending.Changes
	}
	return profile, nil
}

// SubmitUpdate files a pending change request for the caller.
func (s *ProfileService) SubmitUpdate(ctx context.Context, who domain.Identity, changes domain.ProfileChanges, picture *ports.PictureUpload) (*domain.ProfileUpdateRequest, error) {
	if who.IsAdmin() {
		return nil, domain.ErrAdminsCannotSelfUpdate
	}
	if changes == nil {
		changes = domain.ProfileChanges{}
	}

	var uploadedKey string
	if picture != nil {
		// Reject what can be rejected before anything is written to the blob store.
		if len(changes) > 0 {
			if err := changes.Validate(); err != nil {
				return nil, err
			}
		}
		existing, err := s.requests.FindPendingByUser(ctx, who.UserID)
		if err != nil {
			return nil, fmt.Errorf("submit update: pending lookup: %w", err)
		}
		if existing != nil {
			return nil, domain.ErrPendingRequestExists
		}
		key, ref, err := s.storePicture(ctx, who, *picture)
		if err != nil {
			return nil, err
		}
		uploadedKey = key
		changes[domain.FieldProfilePicture] = ref
	}

	req, err := s.createRequest(ctx, who, changes)
	if err != nil {
		if uploadedKey != "" {
			s.discardPicture(uploadedKey)
		}
		return nil, err
	}

	s.log.Info().
		Str("user_id", who.UserID).
		Str("request_id", req.ID).
		Strs("fields", changes.Fields()).
		Msg("profile update submitted")
	return req, nil
}

func (s *ProfileService) createRequest(ctx context.Context, who domain.Identity, changes domain.ProfileChanges) (*domain.ProfileUpdateRequest, error) {
	if err := changes.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, who.UserID); err != nil {
		return nil, fmt.Errorf("submit update: %w", err)
	}

	req, err := s.requests.Create(ctx, &domain.ProfileUpdateRequest{
		UserID:    who.UserID,
		Changes:   changes,
		Status:    domain.RequestPending,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("submit update: %w", err)
	}
	return req, nil
}

// discardPicture removes a blob uploaded for a submission that was not filed.
// It runs detached from the request context, which may already be done.
func (s *ProfileService) discardPicture(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), discardTimeout)
	defer cancel()
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to discard orphaned picture")
		return
	}
	s.log.Info().Str("key", key).Msg("orphaned picture discarded")
}

// DeletePicture clears the caller's picture immediately, outside the approval flow.
func (s *ProfileService) DeletePicture(ctx context.Context, who domain.Identity) (*domain.PublicUser, error) {
	if who.IsAdmin() {
		return nil, domain.ErrAdminsCannotSelfUpdate
	}
	user, err := s.users.UnsetField(ctx, who.UserID, domain.FieldProfilePicture)
	if err != nil {
		return nil, fmt.Errorf("delete picture: %w", err)
	}
	s.log.Info().Str("user_id", who.UserID).Msg("profile picture removed")
	pub := user.Public()
	return &pub, nil
}

// UploadPicture stores an image in the blob store and returns its reference.
// The user record is not modified.
func (s *ProfileService) UploadPicture(ctx context.Context, who domain.Identity, upload ports.PictureUpload) (string, error) {
	_, ref, err := s.storePicture(ctx, who, upload)
	return ref, err
}

func (s *ProfileService) storePicture(ctx context.Context, who domain.Identity, upload ports.PictureUpload) (string, string, error) {
	if s.blobs == nil {
		return "", "", fmt.Errorf("upload picture: no blob store configured")
	}
	contentType := strings.ToLower(strings.TrimSpace(upload.ContentType))
	ext, ok := pictureTypes[contentType]
	if !ok {
		return "", "", domain.NewValidationError("picture must be a jpg or png image")
	}
	if upload.Size <= 0 {
		return "", "", domain.NewValidationError("picture is empty")
	}
	if upload.Size > s.maxPictureBytes {
		return "", "", domain.NewValidationError(fmt.Sprintf("picture must be at most %d bytes", s.maxPictureBytes))
	}

	key := path.Join(pictureFolder, uuid.NewString()+ext)
	ref, err := s.blobs.Put(ctx, key, upload.Body, upload.Size, contentType)
	if err != nil {
		return "", "", fmt.Errorf("upload picture: %w", err)
	}

	s.log.Info().Str("user_id", who.UserID).Str("key", key).Msg("profile picture uploaded")
	return key, ref, nil
}

// ListPending returns pending requests oldest first for FIFO review.
func (s *ProfileService) ListPending(ctx context.Context, who domain.Identity) ([]*domain.ProfileUpdateRequest, error) {
	if !who.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	reqs, err := s.requests.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return reqs, nil
}

// Approve resolves a pending request and applies its changes in one transaction.
func (s *ProfileService) Approve(ctx context.Context, who domain.Identity, requestID string) (*domain.ProfileUpdateRequest, error) {
	if !who.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	var resolved *domain.ProfileUpdateRequest
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		req, err := s.requests.Resolve(ctx, requestID, domain.RequestApproved, who.UserID, s.now())
		if err != nil {
			return err
		}
		if _, err := s.users.ApplyUpdate(ctx, req.UserID, req.Changes); err != nil {
			return err
		}
		resolved = req
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("approve request: %w", err)
	}

	s.log.Info().
		Str("request_id", resolved.ID).
		Str("user_id", resolved.UserID).
		Str("admin_id", who.UserID).
		Msg("profile update approved")
	return resolved, nil
}

// Decline resolves a pending request without touching the user.
func (s *ProfileService) Decline(ctx context.Context, who domain.Identity, requestID string) (*domain.ProfileUpdateRequest, error) {
	if !who.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	req, err := s.requests.Resolve(ctx, requestID, domain.RequestDeclined, who.UserID, s.now())
	if err != nil {
		return nil, fmt.Errorf("decline request: %w", err)
	}

	s.log.Info().
		Str("request_id", req.ID).
		Str("user_id", req.UserID).
		Str("admin_id", who.UserID).
		Msg("profile update declined")
	return req, nil
}
