package models

import "time"

// InventoryItem is one trackable inventory row (a SKU): a card name, set,
// owned quantity, optional purchase price and a physical/logical folder.
type InventoryItem struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"-"`
	Name          string    `json:"name"`
	SetCode       string    `json:"set,omitempty"`
	Quantity      int       `json:"quantity"`
	PurchasePrice *float64  `json:"purchase_price,omitempty"`
	Folder        string    `json:"folder"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AvailableSKU is one row of an availability snapshot: a SKU with a positive
// remaining capacity (owned quantity minus all active reservations) at the
// time the snapshot query ran.
type AvailableSKU struct {
	ID            int64
	Name          string
	SetCode       string
	Available     int
	PurchasePrice *float64
	Folder        string
}

// InventoryPatch describes a partial update to an inventory item.
// Nil fields are left unchanged.
type InventoryPatch struct {
	Name          *string
	SetCode       *string
	Quantity      *int
	PurchasePrice *float64
	Folder        *string
}

// IsEmpty reports whether the patch would change nothing.
func (p *InventoryPatch) IsEmpty() bool {
	return p.Name == nil && p.SetCode == nil && p.Quantity == nil &&
		p.PurchasePrice == nil && p.Folder == nil
}

// CardPriceStats aggregates price information across all of a user's SKUs
// for one card name.
type CardPriceStats struct {
	MinPrice   *float64 `json:"min_price,omitempty"`
	AvgPrice   *float64 `json:"avg_price,omitempty"`
	TotalOwned int      `json:"total_owned"`
}
