package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/talentgate/account-service/internal/core/domain"
)

// Server error labels marking a transaction the client may retry.
const (
	labelTransientTransaction = "TransientTransactionError"
	labelUnknownCommitResult  = "UnknownTransactionCommitResult"
)

// Transactor runs callbacks inside a MongoDB multi-document transaction.
// Requires a replica set or sharded cluster.
type Transactor struct {
	client *mongo.Client
}

func NewTransactor(client *mongo.Client) *Transactor {
	return &Transactor{client: client}
}

// WithinTransaction starts a session, runs fn with the session context and
// commits, or aborts when fn returns an error.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := t.client.StartSession()
	if err != nil {
		return storeErr("start session", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return transactionErr(err)
}

// transactionErr passes classified errors from the callback through untouched
// and tags commit, abort and transient failures as store unavailable.
func transactionErr(err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) || errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	var le mongo.LabeledError
	if errors.As(err, &le) &&
		(le.HasErrorLabel(labelTransientTransaction) || le.HasErrorLabel(labelUnknownCommitResult)) {
		return fmt.Errorf("transaction: %w: %v", domain.ErrStoreUnavailable, err)
	}
	return storeErr("transaction", err)
}
