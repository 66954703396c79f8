package httpapi

import "github.com/gin-gonic/gin"

// NewRouter assembles the gin engine:
//
//	POST   /api/auth/register
//	POST   /api/auth/login
//	POST   /api/auth/refresh
//
//	GET    /api/decks
//	POST   /api/decks
//	GET    /api/decks/:id
//	PUT    /api/decks/:id
//	DELETE /api/decks/:id
//	POST   /api/decks/:id/copy-to-inventory
//
//	GET    /api/inventory
//	POST   /api/inventory
//	GET    /api/inventory/price-stats
//	GET    /api/inventory/:id
//	PATCH  /api/inventory/:id
//	DELETE /api/inventory/:id
//
//	GET    /api/deck-instances/:id/details
//	POST   /api/deck-instances/:id/add-card
//	DELETE /api/deck-instances/:id/remove-card
//	POST   /api/deck-instances/:id/release
//	POST   /api/deck-instances/:id/reoptimize
//
// Everything outside /api/auth requires a Bearer access token.
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), h.requestLogger())

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/refresh", h.Refresh)

	authed := api.Group("", h.authRequired)

	decks := authed.Group("/decks")
	decks.GET("", h.ListDecklists)
	decks.POST("", h.CreateDecklist)
	decks.GET("/:id", h.GetDecklist)
	decks.PUT("/:id", h.UpdateDecklist)
	decks.DELETE("/:id", h.DeleteDecklist)
	decks.POST("/:id/copy-to-inventory", h.Materialize)

	inventory := authed.Group("/inventory")
	inventory.GET("", h.ListInventory)
	inventory.POST("", h.CreateInventoryItem)
	inventory.GET("/price-stats", h.PriceStats)
	inventory.GET("/:id", h.GetInventoryItem)
	inventory.PATCH("/:id", h.PatchInventoryItem)
	inventory.DELETE("/:id", h.DeleteInventoryItem)

	instances := authed.Group("/deck-instances")
	instances.GET("/:id/details", h.Details)
	instances.POST("/:id/add-card", h.AddCard)
	instances.DELETE("/:id/remove-card", h.RemoveCard)
	instances.POST("/:id/release", h.Release)
	instances.POST("/:id/reoptimize", h.Reoptimize)

	return r
}
