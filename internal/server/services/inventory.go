package services

import (
	"context"
	"database/sql"

	"github.com/avelmore/deckvault/internal/common"
	"github.com/avelmore/deckvault/internal/dbx"
	"github.com/avelmore/deckvault/internal/server/allocator"
	"github.com/avelmore/deckvault/internal/server/models"
	"github.com/avelmore/deckvault/internal/server/pricecache"
	"github.com/avelmore/deckvault/internal/server/repositories/repomanager"
)

// InventoryService manages the user's SKUs. Every mutation invalidates the
// user's cached price statistics.
type InventoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	prices      *pricecache.Cache
}

func NewInventoryService(db *sql.DB, m repomanager.RepositoryManager, prices *pricecache.Cache) *InventoryService {
	return &InventoryService{db: db, repomanager: m, prices: prices}
}

// Create stores a new inventory item. Quantity must be non-negative; a
// blank folder defaults to "Unsorted".
func (s *InventoryService) Create(ctx context.Context, userID string, item *models.InventoryItem) (*models.InventoryItem, error) {
	if item.Quantity < 0 {
		return nil, common.ErrorInvalidQuantity
	}
	if item.Folder == "" {
		item.Folder = common.UnsortedFolder
	}
	item.UserID = userID

	repo := s.repomanager.Inventory(s.db)
	created, err := repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}

	s.prices.InvalidateUser(userID)
	return created, nil
}

// Get returns one of the user's items.
func (s *InventoryService) Get(ctx context.Context, userID string, id int64) (*models.InventoryItem, error) {
	repo := s.repomanager.Inventory(s.db)
	return repo.GetOwned(ctx, id, userID)
}

// List returns all of the user's items.
func (s *InventoryService) List(ctx context.Context, userID string) ([]*models.InventoryItem, error) {
	repo := s.repomanager.Inventory(s.db)
	return repo.ListByUser(ctx, userID)
}

// Patch applies a partial update. Quantity may not drop below the total
// currently reserved across all deck instances; that fails with
// common.ErrorItemReserved and writes nothing.
func (s *InventoryService) Patch(ctx context.Context, userID string, id int64, patch *models.InventoryPatch) (*models.InventoryItem, error) {
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return nil, common.ErrorInvalidQuantity
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Inventory(tx)

		item, err := repo.GetOwned(ctx, id, userID)
		if err != nil {
			return err
		}

		if patch.Quantity != nil {
			available, err := repo.Available(ctx, id, userID)
			if err != nil {
				return err
			}
			reserved := item.Quantity - available
			if *patch.Quantity < reserved {
				return common.ErrorItemReserved
			}
		}

		return repo.Patch(ctx, id, userID, patch)
	})
	if err != nil {
		return nil, err
	}

	s.prices.InvalidateUser(userID)

	repo := s.repomanager.Inventory(s.db)
	return repo.GetOwned(ctx, id, userID)
}

// Delete removes an item, refusing while any deck instance still reserves
// copies of it.
func (s *InventoryService) Delete(ctx context.Context, userID string, id int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Inventory(tx)

		item, err := repo.GetOwned(ctx, id, userID)
		if err != nil {
			return err
		}

		available, err := repo.Available(ctx, id, userID)
		if err != nil {
			return err
		}
		if available < item.Quantity {
			return common.ErrorItemReserved
		}

		return repo.Delete(ctx, id, userID)
	})
	if err != nil {
		return err
	}

	s.prices.InvalidateUser(userID)
	return nil
}

// PriceStats returns min/avg purchase price and total owned for one card
// name, served from the price cache when fresh.
func (s *InventoryService) PriceStats(ctx context.Context, userID string, name string) (*models.CardPriceStats, error) {
	key := allocator.NormalizeName(name)

	if stats, ok := s.prices.Get(userID, key); ok {
		return &stats, nil
	}

	repo := s.repomanager.Inventory(s.db)
	stats, err := repo.PriceStats(ctx, userID, key)
	if err != nil {
		return nil, err
	}

	s.prices.Set(userID, key, *stats)
	return stats, nil
}
