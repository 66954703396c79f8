// Package reservations declares the repository contract for reservation
// rows linking deck instances to inventory items.
package reservations

import (
	"context"

	"github.com/avelmore/deckvault/internal/server/models"
)

type Repository interface {
	// BulkInsert persists an allocation result for one instance in a single
	// statement. An empty slice is a no-op.
	BulkInsert(ctx context.Context, instanceID int64, reservations []models.Reservation) error

	// Insert persists one reservation row and fills in the generated id.
	Insert(ctx context.Context, res *models.Reservation) error

	// Get returns one reservation by id, common.ErrorNotFound when absent.
	Get(ctx context.Context, id int64) (*models.Reservation, error)

	// GetByInstanceAndItem returns the reservation for an (instance, SKU)
	// pair, common.ErrorNotFound when absent.
	GetByInstanceAndItem(ctx context.Context, instanceID, itemID int64) (*models.Reservation, error)

	// AddQuantity adjusts quantity_reserved by delta (negative to shrink).
	AddQuantity(ctx context.Context, id int64, delta int) error

	// Delete removes one reservation row.
	Delete(ctx context.Context, id int64) error

	// DeleteByInstance removes every reservation of an instance.
	DeleteByInstance(ctx context.Context, instanceID int64) error

	// ListByInstance returns the instance's reservations joined to their
	// inventory items, ordered by card name then ascending price.
	ListByInstance(ctx context.Context, instanceID int64) ([]models.ReservationDetail, error)

	// ItemIDsByInstance returns the distinct inventory item ids the
	// instance currently reserves.
	ItemIDsByInstance(ctx context.Context, instanceID int64) ([]int64, error)
}
