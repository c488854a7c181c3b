package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/talentgate/account-service/internal/core/domain"
)

const collectionProfileRequests = "profile_update_requests"

// ProfileRequestRepository stores profile update requests. The "one pending
// request per user" rule lives in a unique partial index, not in application code.
type ProfileRequestRepository struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewProfileRequestRepository(db *mongo.Database, timeout time.Duration) *ProfileRequestRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ProfileRequestRepository{col: db.Collection(collectionProfileRequests), timeout: timeout}
}

type profileRequestDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     primitive.ObjectID `bson:"user_id"`
	Changes    map[string]string  `bson:"changes"`
	Status     string             `bson:"status"`
	CreatedAt  time.Time          `bson:"created_at"`
	ResolvedAt *time.Time         `bson:"resolved_at,omitempty"`
	ResolvedBy string             `bson:"resolved_by,omitempty"`
}

func (d *profileRequestDocument) toDomain() *domain.ProfileUpdateRequest {
	return &domain.ProfileUpdateRequest{
		ID:         d.ID.Hex(),
		UserID:     d.UserID.Hex(),
		Changes:    domain.ProfileChanges(d.Changes),
		Status:     domain.RequestStatus(d.Status),
		CreatedAt:  d.CreatedAt,
		ResolvedAt: d.ResolvedAt,
		ResolvedBy: d.ResolvedBy,
	}
}

// Create inserts a pending request; a duplicate key on the partial index means
// the user already has one.
func (r *ProfileRequestRepository) Create(ctx context.Context, req *domain.ProfileUpdateRequest) (*domain.ProfileUpdateRequest, error) {
	userID, ok := parseID(req.UserID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := profileRequestDocument{
		UserID:    userID,
		Changes:   req.Changes,
		Status:    string(domain.RequestPending),
		CreatedAt: req.CreatedAt.UTC(),
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrPendingRequestExists
		}
		return nil, storeErr("insert profile request", err)
	}

	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *ProfileRequestRepository) FindPendingByUser(ctx context.Context, userID string) (*domain.ProfileUpdateRequest, error) {
	oid, ok := parseID(userID)
	if !ok {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc profileRequestDocument
	err := r.col.FindOne(ctx, bson.M{"user_id": oid, "status": string(domain.RequestPending)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, storeErr("find pending request", err)
	}
	return doc.toDomain(), nil
}

func (r *ProfileRequestRepository) ListPending(ctx context.Context) ([]*domain.ProfileUpdateRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"status": string(domain.RequestPending)}, opts)
	if err != nil {
		return nil, storeErr("list pending requests", err)
	}
	defer cur.Close(ctx)

	var docs []profileRequestDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeErr("decode pending requests", err)
	}

	out := make([]*domain.ProfileUpdateRequest, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// Resolve is a compare-and-set on status: the filter only matches while the
// request is still pending, so concurrent resolutions have a single winner.
func (r *ProfileRequestRepository) Resolve(ctx context.Context, id string, status domain.RequestStatus, resolvedBy string, at time.Time) (*domain.ProfileUpdateRequest, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrRequestNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"_id": oid, "status": string(domain.RequestPending)}
	update := bson.M{"$set": bson.M{
		"status":      string(status),
		"resolved_at": at.UTC(),
		"resolved_by": resolvedBy,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc profileRequestDocument
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, storeErr("resolve profile request", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the pending-uniqueness and review-queue indexes.
func (r *ProfileRequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_pending_per_user").
				SetPartialFilterExpression(bson.M{"status": string(domain.RequestPending)}),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
