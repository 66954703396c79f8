// Package inventory declares the repository contract for inventory items
// (SKUs) and the availability snapshots the allocation engine consumes.
package inventory

import (
	"context"

	"github.com/avelmore/deckvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	GetOwned(ctx context.Context, id int64, userID string) (*models.InventoryItem, error)
	ListByUser(ctx context.Context, userID string) ([]*models.InventoryItem, error)

	// Patch applies a partial update; nil fields of the patch are left
	// unchanged. An empty patch is a no-op.
	Patch(ctx context.Context, id int64, userID string, patch *models.InventoryPatch) error

	Delete(ctx context.Context, id int64, userID string) error

	// AvailabilityByName computes the availability snapshot for the given
	// normalized card names in one query: every SKU of the user whose owned
	// quantity exceeds the sum of its active reservations, keyed by
	// normalized name and ordered by purchase price ascending (unpriced
	// last), ties broken by ascending SKU id.
	AvailabilityByName(ctx context.Context, userID string, names []string) (map[string][]models.AvailableSKU, error)

	// Available returns owned minus reserved-across-all-instances for one
	// owned SKU. Missing/unowned SKUs are common.ErrorNotFound.
	Available(ctx context.Context, id int64, userID string) (int, error)

	// RestoreFolder moves the given SKUs into folder.
	RestoreFolder(ctx context.Context, ids []int64, folder string) error

	// PriceStats aggregates price statistics for one normalized card name.
	PriceStats(ctx context.Context, userID string, name string) (*models.CardPriceStats, error)
}
