package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avelmore/deckvault/internal/common"
	"github.com/avelmore/deckvault/internal/dbx"
	"github.com/avelmore/deckvault/internal/server/allocator"
	"github.com/avelmore/deckvault/internal/server/models"
	"github.com/avelmore/deckvault/internal/server/pricecache"
	"github.com/avelmore/deckvault/internal/server/repositories/repomanager"
)

// DeckService drives the deck instance lifecycle: materialize a template
// into an instance with reservations, reoptimize an instance against current
// inventory, manually add or remove reserved copies, and release the
// instance entirely. Every multi-step mutation runs inside one transaction
// so an instance is never observable half-built or half-destroyed.
type DeckService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	prices      *pricecache.Cache
}

func NewDeckService(db *sql.DB, m repomanager.RepositoryManager, prices *pricecache.Cache) *DeckService {
	return &DeckService{db: db, repomanager: m, prices: prices}
}

// MaterializeResult reports what one materialization produced.
type MaterializeResult struct {
	Deck         *models.Decklist
	Reservations []models.ReservationDetail
	MissingCards []models.MissingCard
	TotalCards   int
	ReservedCnt  int
	MissingCnt   int
}

// ReoptimizeResult reports the post-reallocation totals.
type ReoptimizeResult struct {
	ReservedCnt int
	MissingCnt  int
}

// Materialize clones template templateID into a new deck instance, snapshots
// availability for the decklist's card names, runs the allocator and
// persists the resulting reservations and missing entries.
func (s *DeckService) Materialize(ctx context.Context, userID string, templateID int64) (*MaterializeResult, error) {
	var result *MaterializeResult

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		decklistRepo := s.repomanager.Decklists(tx)

		template, err := decklistRepo.GetOwned(ctx, templateID, userID)
		if err != nil {
			return err
		}
		if template.IsInstance {
			return common.ErrorIsInstance
		}

		instance := &models.Decklist{
			UserID:      userID,
			Name:        template.Name,
			Format:      template.Format,
			Description: template.Description,
			Cards:       template.Cards,
			IsInstance:  true,
			DecklistID:  &template.ID,
		}
		instance, err = decklistRepo.Create(ctx, instance)
		if err != nil {
			return fmt.Errorf("error creating instance: %w", err)
		}

		allocation, err := s.allocateForInstance(ctx, tx, userID, instance)
		if err != nil {
			return err
		}

		reservationRepo := s.repomanager.Reservations(tx)
		details, err := reservationRepo.ListByInstance(ctx, instance.ID)
		if err != nil {
			return fmt.Errorf("error listing reservations: %w", err)
		}

		totalCards := 0
		for _, card := range instance.Cards {
			if allocator.NormalizeName(card.Name) == "" {
				continue
			}
			totalCards += card.Quantity
		}

		result = &MaterializeResult{
			Deck:         instance,
			Reservations: details,
			MissingCards: allocation.Missing,
			TotalCards:   totalCards,
			ReservedCnt:  countReserved(allocation.Reservations),
			MissingCnt:   countMissing(allocation.Missing),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.prices.InvalidateUser(userID)
	return result, nil
}

// Reoptimize re-runs the full allocation for an existing instance. Existing
// reservations are deleted first, so inside the transaction the instance's
// own copies count as available again and can be re-matched cheapest-first.
func (s *DeckService) Reoptimize(ctx context.Context, userID string, instanceID int64) (*ReoptimizeResult, error) {
	var result *ReoptimizeResult

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		instance, err := s.getOwnedInstance(ctx, tx, userID, instanceID)
		if err != nil {
			return err
		}

		reservationRepo := s.repomanager.Reservations(tx)
		missingRepo := s.repomanager.MissingCards(tx)

		if err := reservationRepo.DeleteByInstance(ctx, instanceID); err != nil {
			return fmt.Errorf("error deleting reservations: %w", err)
		}
		if err := missingRepo.DeleteByInstance(ctx, instanceID); err != nil {
			return fmt.Errorf("error deleting missing entries: %w", err)
		}

		allocation, err := s.allocateForInstance(ctx, tx, userID, instance)
		if err != nil {
			return err
		}

		result = &ReoptimizeResult{
			ReservedCnt: countReserved(allocation.Reservations),
			MissingCnt:  countMissing(allocation.Missing),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.prices.InvalidateUser(userID)
	return result, nil
}

// AddCard reserves quantity copies of one SKU against an instance, outside
// the decklist-driven allocator. The request fails with
// common.ErrorInsufficientStock when it exceeds the SKU's availability
// across all instances, and writes nothing.
func (s *DeckService) AddCard(ctx context.Context, userID string, instanceID, itemID int64, quantity int) error {
	if quantity <= 0 {
		return common.ErrorInvalidQuantity
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.getOwnedInstance(ctx, tx, userID, instanceID); err != nil {
			return err
		}

		inventoryRepo := s.repomanager.Inventory(tx)
		item, err := inventoryRepo.GetOwned(ctx, itemID, userID)
		if err != nil {
			return err
		}

		available, err := inventoryRepo.Available(ctx, itemID, userID)
		if err != nil {
			return err
		}
		if quantity > available {
			return common.ErrorInsufficientStock
		}

		reservationRepo := s.repomanager.Reservations(tx)
		existing, err := reservationRepo.GetByInstanceAndItem(ctx, instanceID, itemID)
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				return err
			}
			return reservationRepo.Insert(ctx, &models.Reservation{
				DeckInstanceID:   instanceID,
				InventoryItemID:  itemID,
				QuantityReserved: quantity,
				OriginalFolder:   item.Folder,
			})
		}
		return reservationRepo.AddQuantity(ctx, existing.ID, quantity)
	})
	if err != nil {
		return err
	}

	s.prices.InvalidateUser(userID)
	return nil
}

// RemoveCard gives back quantity copies from one reservation. A removal
// covering the whole reservation deletes it and moves the SKU to the
// "Uncategorized" folder; a smaller one just decrements.
func (s *DeckService) RemoveCard(ctx context.Context, userID string, instanceID, reservationID int64, quantity int) error {
	if quantity <= 0 {
		return common.ErrorInvalidQuantity
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.getOwnedInstance(ctx, tx, userID, instanceID); err != nil {
			return err
		}

		reservationRepo := s.repomanager.Reservations(tx)
		res, err := reservationRepo.Get(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.DeckInstanceID != instanceID {
			return common.ErrorNotFound
		}

		if quantity < res.QuantityReserved {
			return reservationRepo.AddQuantity(ctx, reservationID, -quantity)
		}

		if err := reservationRepo.Delete(ctx, reservationID); err != nil {
			return err
		}

		inventoryRepo := s.repomanager.Inventory(tx)
		return inventoryRepo.RestoreFolder(ctx, []int64{res.InventoryItemID}, common.UncategorizedFolder)
	})
	if err != nil {
		return err
	}

	s.prices.InvalidateUser(userID)
	return nil
}

// Release destroys an instance: reserved SKUs move to the "Uncategorized"
// folder, all reservations and missing entries go away, then the instance
// row itself. All inside one transaction.
func (s *DeckService) Release(ctx context.Context, userID string, instanceID int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.getOwnedInstance(ctx, tx, userID, instanceID); err != nil {
			return err
		}

		reservationRepo := s.repomanager.Reservations(tx)
		itemIDs, err := reservationRepo.ItemIDsByInstance(ctx, instanceID)
		if err != nil {
			return fmt.Errorf("error listing reserved items: %w", err)
		}

		inventoryRepo := s.repomanager.Inventory(tx)
		if err := inventoryRepo.RestoreFolder(ctx, itemIDs, common.UncategorizedFolder); err != nil {
			return fmt.Errorf("error restoring folders: %w", err)
		}

		if err := reservationRepo.DeleteByInstance(ctx, instanceID); err != nil {
			return fmt.Errorf("error deleting reservations: %w", err)
		}

		missingRepo := s.repomanager.MissingCards(tx)
		if err := missingRepo.DeleteByInstance(ctx, instanceID); err != nil {
			return fmt.Errorf("error deleting missing entries: %w", err)
		}

		decklistRepo := s.repomanager.Decklists(tx)
		return decklistRepo.Delete(ctx, instanceID, userID)
	})
	if err != nil {
		return err
	}

	s.prices.InvalidateUser(userID)
	return nil
}

// getOwnedInstance loads a decklist row and insists it is a materialized
// instance owned by userID.
func (s *DeckService) getOwnedInstance(ctx context.Context, db dbx.DBTX, userID string, instanceID int64) (*models.Decklist, error) {
	repo := s.repomanager.Decklists(db)
	instance, err := repo.GetOwned(ctx, instanceID, userID)
	if err != nil {
		return nil, err
	}
	if !instance.IsInstance {
		return nil, common.ErrorNotAnInstance
	}
	return instance, nil
}

// allocateForInstance snapshots availability for the instance's card names,
// runs the allocator and persists the result for instance.ID.
func (s *DeckService) allocateForInstance(ctx context.Context, tx dbx.DBTX, userID string, instance *models.Decklist) (*allocator.Result, error) {
	names := make([]string, 0, len(instance.Cards))
	seen := make(map[string]struct{}, len(instance.Cards))
	for _, card := range instance.Cards {
		key := allocator.NormalizeName(card.Name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, key)
	}

	inventoryRepo := s.repomanager.Inventory(tx)
	available, err := inventoryRepo.AvailabilityByName(ctx, userID, names)
	if err != nil {
		return nil, fmt.Errorf("error building availability snapshot: %w", err)
	}

	result := allocator.Allocate(instance.Cards, available)

	reservationRepo := s.repomanager.Reservations(tx)
	if err := reservationRepo.BulkInsert(ctx, instance.ID, result.Reservations); err != nil {
		return nil, fmt.Errorf("error inserting reservations: %w", err)
	}

	missingRepo := s.repomanager.MissingCards(tx)
	if err := missingRepo.BulkInsert(ctx, instance.ID, result.Missing); err != nil {
		return nil, fmt.Errorf("error inserting missing entries: %w", err)
	}

	return &result, nil
}

func countReserved(reservations []models.Reservation) int {
	total := 0
	for _, r := range reservations {
		total += r.QuantityReserved
	}
	return total
}

func countMissing(missing []models.MissingCard) int {
	total := 0
	for _, m := range missing {
		total += m.QuantityNeeded
	}
	return total
}
