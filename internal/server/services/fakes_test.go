package services

// Stateful in-memory fakes for the repository interfaces, shared by the
// service tests in this package. sqlmock supplies the *sql.DB so code paths
// going through dbx.WithTx still see real Begin/Commit/Rollback calls.

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avelmore/deckvault/internal/common"
	"github.com/avelmore/deckvault/internal/dbx"
	"github.com/avelmore/deckvault/internal/server/models"
	decklistsrepo "github.com/avelmore/deckvault/internal/server/repositories/decklists"
	inventoryrepo "github.com/avelmore/deckvault/internal/server/repositories/inventory"
	missingrepo "github.com/avelmore/deckvault/internal/server/repositories/missingcards"
	refreshtokensrepo "github.com/avelmore/deckvault/internal/server/repositories/refreshtokens"
	reservationsrepo "github.com/avelmore/deckvault/internal/server/repositories/reservations"
	"github.com/avelmore/deckvault/internal/server/repositories/repomanager"
	usersrepo "github.com/avelmore/deckvault/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = "new-user"
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr    error
	createErr error

	created []string
	deleted []string
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}

// --- decklists ---

type fakeDecklistsRepo struct {
	rows   map[int64]*models.Decklist
	nextID int64

	createErr error
	updateErr error
	deleteErr error
}

func newFakeDecklistsRepo(rows ...*models.Decklist) *fakeDecklistsRepo {
	f := &fakeDecklistsRepo{rows: map[int64]*models.Decklist{}, nextID: 100}
	for _, d := range rows {
		f.rows[d.ID] = d
	}
	return f
}

func (f *fakeDecklistsRepo) Create(ctx context.Context, d *models.Decklist) (*models.Decklist, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	d.ID = f.nextID
	f.rows[d.ID] = d
	return d, nil
}

func (f *fakeDecklistsRepo) GetOwned(ctx context.Context, id int64, userID string) (*models.Decklist, error) {
	d, ok := f.rows[id]
	if !ok || d.UserID != userID {
		return nil, common.ErrorNotFound
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDecklistsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Decklist, error) {
	var out []*models.Decklist
	for _, d := range f.rows {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDecklistsRepo) Update(ctx context.Context, d *models.Decklist) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	existing, ok := f.rows[d.ID]
	if !ok || existing.UserID != d.UserID {
		return common.ErrorNotFound
	}
	existing.Name = d.Name
	existing.Format = d.Format
	existing.Description = d.Description
	existing.Cards = d.Cards
	return nil
}

func (f *fakeDecklistsRepo) Delete(ctx context.Context, id int64, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	d, ok := f.rows[id]
	if !ok || d.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

// --- inventory ---

type fakeInventoryRepo struct {
	items map[int64]*models.InventoryItem

	availability map[string][]models.AvailableSKU
	available    map[int64]int

	restored map[int64]string

	stats      *models.CardPriceStats
	statsCalls int

	patched   *models.InventoryPatch
	patchErr  error
	deleteErr error
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{
		items:        map[int64]*models.InventoryItem{},
		availability: map[string][]models.AvailableSKU{},
		available:    map[int64]int{},
		restored:     map[int64]string{},
	}
}

func (f *fakeInventoryRepo) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	item.ID = int64(len(f.items) + 1)
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeInventoryRepo) GetOwned(ctx context.Context, id int64, userID string) (*models.InventoryItem, error) {
	item, ok := f.items[id]
	if !ok || item.UserID != userID {
		return nil, common.ErrorNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeInventoryRepo) ListByUser(ctx context.Context, userID string) ([]*models.InventoryItem, error) {
	var out []*models.InventoryItem
	for _, item := range f.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeInventoryRepo) Patch(ctx context.Context, id int64, userID string, patch *models.InventoryPatch) error {
	if f.patchErr != nil {
		return f.patchErr
	}
	f.patched = patch
	if item, ok := f.items[id]; ok && patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	return nil
}

func (f *fakeInventoryRepo) Delete(ctx context.Context, id int64, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	item, ok := f.items[id]
	if !ok || item.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeInventoryRepo) AvailabilityByName(ctx context.Context, userID string, names []string) (map[string][]models.AvailableSKU, error) {
	out := map[string][]models.AvailableSKU{}
	for _, name := range names {
		if skus, ok := f.availability[name]; ok {
			out[name] = skus
		}
	}
	return out, nil
}

func (f *fakeInventoryRepo) Available(ctx context.Context, id int64, userID string) (int, error) {
	if _, ok := f.items[id]; !ok {
		return 0, common.ErrorNotFound
	}
	return f.available[id], nil
}

func (f *fakeInventoryRepo) RestoreFolder(ctx context.Context, ids []int64, folder string) error {
	for _, id := range ids {
		f.restored[id] = folder
		if item, ok := f.items[id]; ok {
			item.Folder = folder
		}
	}
	return nil
}

func (f *fakeInventoryRepo) PriceStats(ctx context.Context, userID string, name string) (*models.CardPriceStats, error) {
	f.statsCalls++
	if f.stats == nil {
		return &models.CardPriceStats{}, nil
	}
	copied := *f.stats
	return &copied, nil
}

// --- reservations ---

type fakeReservationsRepo struct {
	rows   map[int64]*models.Reservation
	nextID int64

	// cardNames maps inventory item ids to card names for ListByInstance.
	cardNames map[int64]string
	prices    map[int64]*float64

	bulkErr   error
	insertErr error
}

func newFakeReservationsRepo() *fakeReservationsRepo {
	return &fakeReservationsRepo{
		rows:      map[int64]*models.Reservation{},
		nextID:    500,
		cardNames: map[int64]string{},
		prices:    map[int64]*float64{},
	}
}

func (f *fakeReservationsRepo) BulkInsert(ctx context.Context, instanceID int64, reservations []models.Reservation) error {
	if f.bulkErr != nil {
		return f.bulkErr
	}
	for _, r := range reservations {
		r.DeckInstanceID = instanceID
		f.nextID++
		r.ID = f.nextID
		copied := r
		f.rows[r.ID] = &copied
	}
	return nil
}

func (f *fakeReservationsRepo) Insert(ctx context.Context, res *models.Reservation) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	res.ID = f.nextID
	copied := *res
	f.rows[res.ID] = &copied
	return nil
}

func (f *fakeReservationsRepo) Get(ctx context.Context, id int64) (*models.Reservation, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReservationsRepo) GetByInstanceAndItem(ctx context.Context, instanceID, itemID int64) (*models.Reservation, error) {
	for _, r := range f.rows {
		if r.DeckInstanceID == instanceID && r.InventoryItemID == itemID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeReservationsRepo) AddQuantity(ctx context.Context, id int64, delta int) error {
	r, ok := f.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.QuantityReserved += delta
	return nil
}

func (f *fakeReservationsRepo) Delete(ctx context.Context, id int64) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeReservationsRepo) DeleteByInstance(ctx context.Context, instanceID int64) error {
	for id, r := range f.rows {
		if r.DeckInstanceID == instanceID {
			delete(f.rows, id)
		}
	}
	return nil
}

func (f *fakeReservationsRepo) ListByInstance(ctx context.Context, instanceID int64) ([]models.ReservationDetail, error) {
	var out []models.ReservationDetail
	for _, r := range f.rows {
		if r.DeckInstanceID != instanceID {
			continue
		}
		out = append(out, models.ReservationDetail{
			Reservation:   *r,
			CardName:      f.cardNames[r.InventoryItemID],
			PurchasePrice: f.prices[r.InventoryItemID],
		})
	}
	return out, nil
}

func (f *fakeReservationsRepo) ItemIDsByInstance(ctx context.Context, instanceID int64) ([]int64, error) {
	var out []int64
	for _, r := range f.rows {
		if r.DeckInstanceID == instanceID {
			out = append(out, r.InventoryItemID)
		}
	}
	return out, nil
}

// --- missing cards ---

type fakeMissingRepo struct {
	rows map[int64][]models.MissingCard

	bulkErr error
}

func newFakeMissingRepo() *fakeMissingRepo {
	return &fakeMissingRepo{rows: map[int64][]models.MissingCard{}}
}

func (f *fakeMissingRepo) BulkInsert(ctx context.Context, instanceID int64, missing []models.MissingCard) error {
	if f.bulkErr != nil {
		return f.bulkErr
	}
	for _, m := range missing {
		m.DeckInstanceID = instanceID
		f.rows[instanceID] = append(f.rows[instanceID], m)
	}
	return nil
}

func (f *fakeMissingRepo) ListByInstance(ctx context.Context, instanceID int64) ([]models.MissingCard, error) {
	return f.rows[instanceID], nil
}

func (f *fakeMissingRepo) DeleteByInstance(ctx context.Context, instanceID int64) error {
	delete(f.rows, instanceID)
	return nil
}

// --- manager ---

type fakeRepoManager struct {
	u  *fakeUsersRepo
	rt *fakeRefreshRepo
	d  *fakeDecklistsRepo
	i  *fakeInventoryRepo
	r  *fakeReservationsRepo
	m  *fakeMissingRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.rt
}
func (m *fakeRepoManager) Decklists(db dbx.DBTX) decklistsrepo.Repository { return m.d }
func (m *fakeRepoManager) Inventory(db dbx.DBTX) inventoryrepo.Repository { return m.i }
func (m *fakeRepoManager) Reservations(db dbx.DBTX) reservationsrepo.Repository {
	return m.r
}
func (m *fakeRepoManager) MissingCards(db dbx.DBTX) missingrepo.Repository { return m.m }

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)
