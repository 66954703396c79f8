package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avelmore/deckvault/internal/common"
	"github.com/avelmore/deckvault/internal/server/models"
	"github.com/avelmore/deckvault/internal/server/pricecache"
)

func newInventoryFixture(t *testing.T) (*InventoryService, *fakeRepoManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })

	rm := &fakeRepoManager{i: newFakeInventoryRepo()}
	return NewInventoryService(db, rm, pricecache.New(16, time.Minute)), rm, mock
}

func intPtr(v int) *int { return &v }

func TestInventoryCreate_DefaultsFolder(t *testing.T) {
	s, _, _ := newInventoryFixture(t)

	created, err := s.Create(context.Background(), "u1", &models.InventoryItem{Name: "Lightning Bolt", Quantity: 4})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created.Folder != common.UnsortedFolder {
		t.Fatalf("want default folder %q, got %q", common.UnsortedFolder, created.Folder)
	}
	if created.UserID != "u1" {
		t.Fatalf("owner not set: %q", created.UserID)
	}
}

func TestInventoryCreate_NegativeQuantity(t *testing.T) {
	s, _, _ := newInventoryFixture(t)

	_, err := s.Create(context.Background(), "u1", &models.InventoryItem{Name: "x", Quantity: -1})
	if !errors.Is(err, common.ErrorInvalidQuantity) {
		t.Fatalf("want ErrorInvalidQuantity, got %v", err)
	}
}

func TestInventoryPatch_QuantityBelowReserved(t *testing.T) {
	s, rm, mock := newInventoryFixture(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	// 4 owned, 1 available, so 3 are reserved
	rm.i.items[10] = &models.InventoryItem{ID: 10, UserID: "u1", Name: "Lightning Bolt", Quantity: 4}
	rm.i.available[10] = 1

	_, err := s.Patch(context.Background(), "u1", 10, &models.InventoryPatch{Quantity: intPtr(2)})
	if !errors.Is(err, common.ErrorItemReserved) {
		t.Fatalf("want ErrorItemReserved, got %v", err)
	}
	if rm.i.patched != nil {
		t.Fatal("patch must not be applied")
	}
}

func TestInventoryPatch_Applies(t *testing.T) {
	s, rm, mock := newInventoryFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm.i.items[10] = &models.InventoryItem{ID: 10, UserID: "u1", Name: "Lightning Bolt", Quantity: 4}
	rm.i.available[10] = 4

	updated, err := s.Patch(context.Background(), "u1", 10, &models.InventoryPatch{Quantity: intPtr(2)})
	if err != nil {
		t.Fatalf("Patch error: %v", err)
	}
	if updated.Quantity != 2 {
		t.Fatalf("want quantity 2, got %d", updated.Quantity)
	}
}

func TestInventoryDelete_RefusesWhileReserved(t *testing.T) {
	s, rm, mock := newInventoryFixture(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm.i.items[10] = &models.InventoryItem{ID: 10, UserID: "u1", Quantity: 4}
	rm.i.available[10] = 3

	err := s.Delete(context.Background(), "u1", 10)
	if !errors.Is(err, common.ErrorItemReserved) {
		t.Fatalf("want ErrorItemReserved, got %v", err)
	}
	if _, ok := rm.i.items[10]; !ok {
		t.Fatal("item must survive")
	}
}

func TestInventoryDelete_Unreserved(t *testing.T) {
	s, rm, mock := newInventoryFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm.i.items[10] = &models.InventoryItem{ID: 10, UserID: "u1", Quantity: 4}
	rm.i.available[10] = 4

	if err := s.Delete(context.Background(), "u1", 10); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, ok := rm.i.items[10]; ok {
		t.Fatal("item must be gone")
	}
}

func TestPriceStats_CachesPerName(t *testing.T) {
	s, rm, _ := newInventoryFixture(t)
	rm.i.stats = &models.CardPriceStats{MinPrice: price(1.0), AvgPrice: price(1.5), TotalOwned: 6}

	for i := 0; i < 3; i++ {
		stats, err := s.PriceStats(context.Background(), "u1", "  Lightning BOLT ")
		if err != nil {
			t.Fatalf("PriceStats error: %v", err)
		}
		if stats.TotalOwned != 6 {
			t.Fatalf("unexpected stats: %+v", stats)
		}
	}

	if rm.i.statsCalls != 1 {
		t.Fatalf("normalized name must hit the cache, got %d queries", rm.i.statsCalls)
	}
}

func TestInventoryCreate_InvalidatesPriceCache(t *testing.T) {
	s, rm, _ := newInventoryFixture(t)
	rm.i.stats = &models.CardPriceStats{TotalOwned: 2}

	if _, err := s.PriceStats(context.Background(), "u1", "shock"); err != nil {
		t.Fatalf("PriceStats error: %v", err)
	}
	if _, err := s.Create(context.Background(), "u1", &models.InventoryItem{Name: "Shock", Quantity: 1}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := s.PriceStats(context.Background(), "u1", "shock"); err != nil {
		t.Fatalf("PriceStats error: %v", err)
	}

	if rm.i.statsCalls != 2 {
		t.Fatalf("mutation must invalidate the cache, got %d queries", rm.i.statsCalls)
	}
}
