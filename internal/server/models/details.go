package models

// DeckInstanceDetails is the aggregate read model for one deck instance:
// the instance row, its originating template (if any), all reservations
// joined to their inventory items, all missing entries, and derived totals.
type DeckInstanceDetails struct {
	Deck             *Decklist           `json:"deck"`
	OriginalDecklist *Decklist           `json:"originalDecklist,omitempty"`
	Reservations     []ReservationDetail `json:"reservations"`
	MissingCards     []MissingCard       `json:"missingCards"`
	TotalCost        float64             `json:"totalCost"`
	MissingCost      float64             `json:"missingCost"`
	ReservedCount    int                 `json:"reservedCount"`
	MissingCount     int                 `json:"missingCount"`
	ExtraCount       int                 `json:"extraCount"`
}
