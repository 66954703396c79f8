package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avelmore/deckvault/internal/common"
	"github.com/avelmore/deckvault/internal/server/allocator"
	"github.com/avelmore/deckvault/internal/server/models"
	"github.com/avelmore/deckvault/internal/server/pricecache"
	"github.com/avelmore/deckvault/internal/server/repositories/repomanager"
)

// DetailService assembles the aggregate read model for one deck instance.
// It never writes; price statistics for missing cards come through the
// price cache.
type DetailService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	prices      *pricecache.Cache
}

func NewDetailService(db *sql.DB, m repomanager.RepositoryManager, prices *pricecache.Cache) *DetailService {
	return &DetailService{db: db, repomanager: m, prices: prices}
}

// GetDetails returns the instance row, its originating template when still
// present, reservations joined to their SKUs, missing entries, and derived
// totals. extraCount is the reserved quantity of cards whose name does not
// appear in the originating template (manual additions); when the template
// has been deleted, the instance's own card snapshot stands in for it.
func (s *DetailService) GetDetails(ctx context.Context, userID string, instanceID int64) (*models.DeckInstanceDetails, error) {
	decklistRepo := s.repomanager.Decklists(s.db)

	instance, err := decklistRepo.GetOwned(ctx, instanceID, userID)
	if err != nil {
		return nil, err
	}
	if !instance.IsInstance {
		return nil, common.ErrorNotAnInstance
	}

	var template *models.Decklist
	if instance.DecklistID != nil {
		template, err = decklistRepo.GetOwned(ctx, *instance.DecklistID, userID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
	}

	reservationRepo := s.repomanager.Reservations(s.db)
	reservations, err := reservationRepo.ListByInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	missingRepo := s.repomanager.MissingCards(s.db)
	missing, err := missingRepo.ListByInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	details := &models.DeckInstanceDetails{
		Deck:             instance,
		OriginalDecklist: template,
		Reservations:     reservations,
		MissingCards:     missing,
	}

	templateNames := cardNameSet(instance, template)
	for _, r := range reservations {
		details.ReservedCount += r.QuantityReserved
		if r.PurchasePrice != nil {
			details.TotalCost += float64(r.QuantityReserved) * *r.PurchasePrice
		}
		if _, ok := templateNames[allocator.NormalizeName(r.CardName)]; !ok {
			details.ExtraCount += r.QuantityReserved
		}
	}

	for _, m := range missing {
		details.MissingCount += m.QuantityNeeded
		if stats, err := s.priceStatsFor(ctx, userID, m.CardName); err == nil && stats.MinPrice != nil {
			details.MissingCost += float64(m.QuantityNeeded) * *stats.MinPrice
		}
	}

	return details, nil
}

// priceStatsFor serves per-name price statistics through the cache.
func (s *DetailService) priceStatsFor(ctx context.Context, userID, name string) (*models.CardPriceStats, error) {
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

// cardNameSet returns the normalized names of the reference decklist: the
// originating template when present, otherwise the instance's own snapshot.
func cardNameSet(instance, template *models.Decklist) map[string]struct{} {
	reference := instance
	if template != nil {
		reference = template
	}

	names := make(map[string]struct{}, len(reference.Cards))
	for _, card := range reference.Cards {
		key := allocator.NormalizeName(card.Name)
		if key == "" {
			continue
		}
		names[key] = struct{}{}
	}
	return names
}
