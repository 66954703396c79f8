package models

// Reservation is a claim of QuantityReserved units of one inventory item by
// one deck instance. OriginalFolder snapshots the item's folder at
// reservation time so it can be restored on release.
//
// Invariant: for any inventory item, the sum of QuantityReserved across all
// reservations never exceeds the item's owned quantity.
type Reservation struct {
	ID               int64  `json:"id"`
	DeckInstanceID   int64  `json:"deck_instance_id"`
	InventoryItemID  int64  `json:"inventory_item_id"`
	QuantityReserved int    `json:"quantity_reserved"`
	OriginalFolder   string `json:"original_folder,omitempty"`
}

// ReservationDetail is a reservation joined to its inventory item, used by
// read-side views.
type ReservationDetail struct {
	Reservation
	CardName      string   `json:"card_name"`
	SetCode       string   `json:"set,omitempty"`
	PurchasePrice *float64 `json:"purchase_price,omitempty"`
	Folder        string   `json:"folder"`
}

// MissingCard records a shortfall: a quantity of a named card that could not
// be satisfied from inventory at allocation time. The set of missing cards
// for an instance is recomputed wholesale on every (re)allocation.
type MissingCard struct {
	ID             int64  `json:"id"`
	DeckInstanceID int64  `json:"deck_instance_id"`
	CardName       string `json:"card_name"`
	SetCode        string `json:"set,omitempty"`
	QuantityNeeded int    `json:"quantity_needed"`
}
