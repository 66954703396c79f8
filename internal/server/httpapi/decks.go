package httpapi

import (
	"net/http"

	"github.com/avelmore/deckvault/internal/server/models"
	"github.com/gin-gonic/gin"
)

// Materialize handles POST /api/decks/:id/copy-to-inventory: clone template
// :id into a deck instance and allocate inventory against it.
func (h *Handlers) Materialize(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.decks.Materialize(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, "materialize", err)
		return
	}

	reservations := result.Reservations
	if reservations == nil {
		reservations = []models.ReservationDetail{}
	}
	missing := result.MissingCards
	if missing == nil {
		missing = []models.MissingCard{}
	}

	c.JSON(http.StatusCreated, MaterializeResponse{
		Deck:          result.Deck,
		Reservations:  reservations,
		MissingCards:  missing,
		TotalCards:    result.TotalCards,
		ReservedCount: result.ReservedCnt,
		MissingCount:  result.MissingCnt,
	})
}

// Details handles GET /api/deck-instances/:id/details.
func (h *Handlers) Details(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	details, err := h.details.GetDetails(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, "deck details", err)
		return
	}

	if details.Reservations == nil {
		details.Reservations = []models.ReservationDetail{}
	}
	if details.MissingCards == nil {
		details.MissingCards = []models.MissingCard{}
	}

	c.JSON(http.StatusOK, details)
}

// AddCard handles POST /api/deck-instances/:id/add-card.
func (h *Handlers) AddCard(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req AddCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	err := h.decks.AddCard(c.Request.Context(), currentUserID(c), id, req.InventoryItemID, req.Quantity)
	if err != nil {
		h.writeError(c, "add card", err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// RemoveCard handles DELETE /api/deck-instances/:id/remove-card.
func (h *Handlers) RemoveCard(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RemoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	err := h.decks.RemoveCard(c.Request.Context(), currentUserID(c), id, req.ReservationID, req.Quantity)
	if err != nil {
		h.writeError(c, "remove card", err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// Release handles POST /api/deck-instances/:id/release.
func (h *Handlers) Release(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.decks.Release(c.Request.Context(), currentUserID(c), id); err != nil {
		h.writeError(c, "release", err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// Reoptimize handles POST /api/deck-instances/:id/reoptimize.
func (h *Handlers) Reoptimize(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.decks.Reoptimize(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, "reoptimize", err)
		return
	}

	c.JSON(http.StatusOK, ReoptimizeResponse{
		Success:       true,
		ReservedCount: result.ReservedCnt,
		MissingCount:  result.MissingCnt,
	})
}
