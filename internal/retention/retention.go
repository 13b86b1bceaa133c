// Package retention bounds collection growth by age and document count.
package retention

import (
	"context"
	"fmt"
	"time"

	"curator/internal/logger"
)

// Store is the persistence surface retention needs.
type Store interface {
	CountDocuments(ctx context.Context, coll string) (int64, error)
	IDsOlderThan(ctx context.Context, coll, timeField string, cutoff time.Time) ([]interface{}, error)
	OldestIDs(ctx context.Context, coll string, n int64) ([]interface{}, error)
	DeleteByIDs(ctx context.Context, coll string, ids []interface{}) (int64, error)
}

// Enforcer applies retention policy to content collections.
type Enforcer struct {
	store Store
}

// NewEnforcer returns an Enforcer backed by the given store.
func NewEnforcer(store Store) *Enforcer {
	return &Enforcer{store: store}
}

// Enforce deletes documents older than maxAge, but never shrinks the
// collection below maxCount. When the collection holds maxCount documents or
// fewer, nothing is deleted no matter how old the documents are. Otherwise
// at most total-maxCount of the oldest over-age documents go, oldest first.
// Returns the number of documents removed.
func (e *Enforcer) Enforce(ctx context.Context, coll, timeField string, maxAge time.Duration, maxCount int64) (int64, error) {
	total, err := e.store.CountDocuments(ctx, coll)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", coll, err)
	}
	if total <= maxCount {
		logger.Debug("Retention floor holds, nothing to delete", "collection", coll, "total", total, "max_count", maxCount)
		return 0, nil
	}

	cutoff := time.Now().UTC().Add(-maxAge)
	oldIDs, err := e.store.IDsOlderThan(ctx, coll, timeField, cutoff)
	if err != nil {
		return 0, fmt.Errorf("listing over-age documents in %s: %w", coll, err)
	}
	if len(oldIDs) == 0 {
		return 0, nil
	}

	budget := total - maxCount
	if int64(len(oldIDs)) > budget {
		// IDs arrive oldest first, so trimming the tail keeps the oldest.
		oldIDs = oldIDs[:budget]
	}

	removed, err := e.store.DeleteByIDs(ctx, coll, oldIDs)
	if err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", coll, err)
	}
	logger.Info("Retention pass removed documents", "collection", coll, "removed", removed, "total_before", total)
	return removed, nil
}

// EnforceMaxDocs is the pure count cap: when the collection exceeds maxCount
// it deletes the oldest surplus regardless of age.
func (e *Enforcer) EnforceMaxDocs(ctx context.Context, coll string, maxCount int64) (int64, error) {
	total, err := e.store.CountDocuments(ctx, coll)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", coll, err)
	}
	surplus := total - maxCount
	if surplus <= 0 {
		return 0, nil
	}

	ids, err := e.store.OldestIDs(ctx, coll, surplus)
	if err != nil {
		return 0, fmt.Errorf("listing oldest documents in %s: %w", coll, err)
	}
	removed, err := e.store.DeleteByIDs(ctx, coll, ids)
	if err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", coll, err)
	}
	logger.Info("Document cap removed surplus", "collection", coll, "removed", removed, "max_count", maxCount)
	return removed, nil
}
