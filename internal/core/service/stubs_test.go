package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/talentgate/account-service/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory credential store
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	nextID  int
	findErr error
	applied []domain.ProfileChanges
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.ProfilePicture != nil {
		pic := *u.ProfilePicture
		clone.ProfilePicture = &pic
	}
	return &clone
}

func (r *stubUserRepo) seed(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		r.nextID++
		u.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	r.byID[u.ID] = cloneUser(u)
	return cloneUser(u)
}

func (r *stubUserRepo) get(id string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.byID[id])
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			r.mu.Unlock()
			return nil, domain.ErrDuplicateEmail
		}
	}
	r.mu.Unlock()
	return r.seed(cloneUser(user)), nil
}

func (r *stubUserRepo) ApplyUpdate(_ context.Context, id string, changes domain.ProfileChanges) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	for field, value := range changes {
		switch field {
		case domain.FieldName:
			u.Name = value
		case domain.FieldState:
			u.State = value
		case domain.FieldProfilePicture:
			v := value
			u.ProfilePicture = &v
		}
	}
	r.applied = append(r.applied, changes)
	return cloneUser(u), nil
}

func (r *stubUserRepo) UnsetField(_ context.Context, id, field string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if field == domain.FieldProfilePicture {
		u.ProfilePicture = nil
	}
	return cloneUser(u), nil
}

// ---------------------------------------------------------------------------
// In-memory request store (mirrors the unique partial index and CAS resolve)
// ---------------------------------------------------------------------------

type stubRequestRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.ProfileUpdateRequest
	nextID    int
	createErr error
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{byID: make(map[string]*domain.ProfileUpdateRequest)}
}

func cloneRequest(r *domain.ProfileUpdateRequest) *domain.ProfileUpdateRequest {
	clone := *r
	clone.Changes = make(domain.ProfileChanges, len(r.Changes))
	for k, v := range r.Changes {
		clone.Changes[k] = v
	}
	return &clone
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.ProfileUpdateRequest) (*domain.ProfileUpdateRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.byID {
		if existing.UserID == req.UserID && existing.Status == domain.RequestPending {
			return nil, domain.ErrPendingRequestExists
		}
	}
	r.nextID++
	stored := cloneRequest(req)
	stored.ID = fmt.Sprintf("req-%d", r.nextID)
	r.byID[stored.ID] = stored
	return cloneRequest(stored), nil
}

func (r *stubRequestRepo) FindPendingByUser(_ context.Context, userID string) (*domain.ProfileUpdateRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.byID {
		if req.UserID == userID && req.Status == domain.RequestPending {
			return cloneRequest(req), nil
		}
	}
	return nil, nil
}

func (r *stubRequestRepo) ListPending(_ context.Context) ([]*domain.ProfileUpdateRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ProfileUpdateRequest
	for _, req := range r.byID {
		if req.Status == domain.RequestPending {
			out = append(out, cloneRequest(req))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *stubRequestRepo) Resolve(_ context.Context, id string, status domain.RequestStatus, resolvedBy string, at time.Time) (*domain.ProfileUpdateRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok || req.Status != domain.RequestPending {
		return nil, domain.ErrRequestNotFound
	}
	req.Status = status
	req.ResolvedBy = resolvedBy
	resolved := at
	req.ResolvedAt = &resolved
	return cloneRequest(req), nil
}

func (r *stubRequestRepo) countPending(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, req := range r.byID {
		if req.UserID == userID && req.Status == domain.RequestPending {
			n++
		}
	}
	return n
}

func (r *stubRequestRepo) get(id string) *domain.ProfileUpdateRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneRequest(r.byID[id])
}

// ---------------------------------------------------------------------------
// Transactor, blob store, limiter, token issuer
// ---------------------------------------------------------------------------

type stubTx struct {
	mu    sync.Mutex
	calls int
}

func (t *stubTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	return fn(ctx)
}

func (t *stubTx) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

type stubBlobs struct {
	keys    []string
	bodies  [][]byte
	deleted []string
	err     error
}

// stored returns the keys still present in the store.
func (b *stubBlobs) stored() []string {
	gone := make(map[string]bool, len(b.deleted))
	for _, k := range b.deleted {
		gone[k] = true
	}
	var live []string
	for _, k := range b.keys {
		if !gone[k] {
			live = append(live, k)
		}
	}
	return live
}

func (b *stubBlobs) Delete(_ context.Context, key string) error {
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *stubBlobs) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	body, _ := io.ReadAll(r)
	b.keys = append(b.keys, key)
	b.bodies = append(b.bodies, body)
	return "https://blobs.example.com/" + key, nil
}

type stubLimiter struct {
	blocked  bool
	failures map[string]int
	resets   int
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{failures: make(map[string]int)}
}

func (l *stubLimiter) Blocked(_ context.Context, _ string) (bool, error) { return l.blocked, nil }

func (l *stubLimiter) RecordFailure(_ context.Context, email string) error {
	l.failures[email]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, email string) error {
	delete(l.failures, email)
	l.resets++
	return nil
}
