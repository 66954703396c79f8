package models

import "time"

// DecklistCard is one line of a decklist: how many copies of a named card,
// optionally pinned to a set. Card names are matched case-insensitively
// after trimming whitespace; entries with a blank name are ignored by the
// allocation engine.
type DecklistCard struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Set      string `json:"set,omitempty"`
}

// Decklist is a deck row. With IsInstance unset it is a template (wishlist)
// that never reserves inventory. With IsInstance set it is a materialized
// deck instance whose Cards field is a snapshot of the template at
// materialization time; DecklistID then points back at the originating
// template, if any.
type Decklist struct {
	ID          int64          `json:"id"`
	UserID      string         `json:"-"`
	Name        string         `json:"name"`
	Format      string         `json:"format,omitempty"`
	Description string         `json:"description,omitempty"`
	Cards       []DecklistCard `json:"cards"`
	IsInstance  bool           `json:"is_instance"`
	DecklistID  *int64         `json:"decklist_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
