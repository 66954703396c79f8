// Package allocator implements the deck-instance allocation algorithm:
// given a decklist and a snapshot of available inventory grouped by card
// name, it partitions the inventory into per-card reservations and records
// any shortfall as missing-card entries.
//
// The allocator is pure: it only computes, it never writes. Persisting the
// result (and building the snapshot) is the caller's job.
package allocator

import (
	"strings"

	"github.com/avelmore/deckvault/internal/server/models"
)

// NormalizeName returns the canonical matching key for a card name: trimmed
// and lower-cased. Two names with equal keys are the same bucket of need.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Result holds the output of one allocation pass. Reservations carry
// InventoryItemID, QuantityReserved and OriginalFolder; the deck instance id
// is assigned by the caller on insert. The missing set is complete: it is
// meant to replace, not patch, any previous missing entries.
type Result struct {
	Reservations []models.Reservation
	Missing      []models.MissingCard
}

// Allocate assigns available inventory to decklist entries, cheapest copies
// first. The available map must be keyed by NormalizeName(name), each slice
// sorted ascending by purchase price with unpriced SKUs last and equal
// prices broken by ascending SKU id (the order the snapshot query returns),
// which makes the allocation deterministic.
//
// Entries with a blank or whitespace-only name are skipped. A per-call
// consumption tracker guards against drawing more than a SKU's snapshot
// capacity when several decklist lines resolve to the same SKU; draws from
// the same SKU are coalesced into a single reservation.
func Allocate(cards []models.DecklistCard, available map[string][]models.AvailableSKU) Result {
	var res Result

	consumed := make(map[int64]int) // SKU id -> units drawn in this batch
	reserved := make(map[int64]int) // SKU id -> index into res.Reservations

	for _, card := range cards {
		key := NormalizeName(card.Name)
		if key == "" {
			continue
		}

		remaining := card.Quantity
		for _, sku := range available[key] {
			if remaining <= 0 {
				break
			}
			actuallyAvailable := sku.Available - consumed[sku.ID]
			if actuallyAvailable <= 0 {
				continue
			}

			take := min(remaining, actuallyAvailable)
			if idx, ok := reserved[sku.ID]; ok {
				res.Reservations[idx].QuantityReserved += take
			} else {
				res.Reservations = append(res.Reservations, models.Reservation{
					InventoryItemID:  sku.ID,
					QuantityReserved: take,
					OriginalFolder:   sku.Folder,
				})
				reserved[sku.ID] = len(res.Reservations) - 1
			}
			consumed[sku.ID] += take
			remaining -= take
		}

		if remaining > 0 {
			res.Missing = append(res.Missing, models.MissingCard{
				CardName:       strings.TrimSpace(card.Name),
				SetCode:        card.Set,
				QuantityNeeded: remaining,
			})
		}
	}

	return res
}
