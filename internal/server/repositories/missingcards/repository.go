// Package missingcards declares the repository contract for recorded
// allocation shortfalls. The set of missing cards for an instance is always
// replaced wholesale, never patched.
package missingcards

import (
	"context"

	"github.com/avelmore/deckvault/internal/server/models"
)

type Repository interface {
	// BulkInsert persists the missing set for one instance in a single
	// statement. An empty slice is a no-op.
	BulkInsert(ctx context.Context, instanceID int64, missing []models.MissingCard) error

	// ListByInstance returns the instance's missing entries ordered by card name.
	ListByInstance(ctx context.Context, instanceID int64) ([]models.MissingCard, error)

	// DeleteByInstance removes every missing entry of an instance.
	DeleteByInstance(ctx context.Context, instanceID int64) error
}
