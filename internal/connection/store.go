package connection

import (
	"context"
	"time"

	id "fastpass/pkg/domain"
)

// Store is the connection persistence contract.
type Store interface {
	// Get returns the record or sentinel.ErrNotFound.
	Get(ctx context.Context, userID id.UserID, appID id.AppID) (*Record, error)

	// RecordApproval increments the approval count and stamps last use,
	// creating the record on first approval.
	RecordApproval(ctx context.Context, userID id.UserID, appID id.AppID, at time.Time) error

	// SetCredential stores the managed credential if none exists yet. It
	// returns the stored credential, which may differ from the argument when
	// a concurrent writer won.
	SetCredential(ctx context.Context, userID id.UserID, appID id.AppID, credential string) (string, error)

	// ListByUser returns all of a user's connections.
	ListByUser(ctx context.Context, userID id.UserID) ([]*Record, error)
}
