package httpapi

import "github.com/avelmore/deckvault/internal/server/models"

// ErrorResponse is the JSON body of every non-2xx answer. Internal detail
// never leaks through Error; it is logged server-side instead.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// --- auth ---

type RegisterRequest struct {
	Login    string `json:"login" binding:"required,notblank,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// --- decklists ---

type CardPayload struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity" binding:"min=0"`
	Set      string `json:"set"`
}

type DecklistRequest struct {
	Name        string        `json:"name" binding:"required,notblank,max=200"`
	Format      string        `json:"format" binding:"max=50"`
	Description string        `json:"description" binding:"max=2000"`
	Cards       []CardPayload `json:"cards" binding:"dive"`
}

func (r *DecklistRequest) cards() []models.DecklistCard {
	out := make([]models.DecklistCard, 0, len(r.Cards))
	for _, c := range r.Cards {
		out = append(out, models.DecklistCard{Name: c.Name, Quantity: c.Quantity, Set: c.Set})
	}
	return out
}

// --- inventory ---

type CreateItemRequest struct {
	Name          string   `json:"name" binding:"required,notblank,max=200"`
	Set           string   `json:"set" binding:"max=20"`
	Quantity      int      `json:"quantity" binding:"min=0"`
	PurchasePrice *float64 `json:"purchase_price" binding:"omitempty,min=0"`
	Folder        string   `json:"folder" binding:"max=100"`
}

type PatchItemRequest struct {
	Name          *string  `json:"name" binding:"omitempty,notblank,max=200"`
	Set           *string  `json:"set" binding:"omitempty,max=20"`
	Quantity      *int     `json:"quantity" binding:"omitempty,min=0"`
	PurchasePrice *float64 `json:"purchase_price" binding:"omitempty,min=0"`
	Folder        *string  `json:"folder" binding:"omitempty,max=100"`
}

// --- deck instance lifecycle ---

type AddCardRequest struct {
	InventoryItemID int64 `json:"inventory_item_id" binding:"required"`
	Quantity        int   `json:"quantity" binding:"required,gt=0"`
}

type RemoveCardRequest struct {
	ReservationID int64 `json:"reservation_id" binding:"required"`
	Quantity      int   `json:"quantity" binding:"required,gt=0"`
}

type MaterializeResponse struct {
	Deck          *models.Decklist           `json:"deck"`
	Reservations  []models.ReservationDetail `json:"reservations"`
	MissingCards  []models.MissingCard       `json:"missingCards"`
	TotalCards    int                        `json:"totalCards"`
	ReservedCount int                        `json:"reservedCount"`
	MissingCount  int                        `json:"missingCount"`
}

type ReoptimizeResponse struct {
	Success       bool `json:"success"`
	ReservedCount int  `json:"reservedCount"`
	MissingCount  int  `json:"missingCount"`
}
