// Package httpapi exposes the DeckVault services over a JSON HTTP surface
// built on gin. Handlers translate sentinel errors from the service layer
// into status codes; internals are logged, never returned to the caller.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/avelmore/deckvault/internal/common"
	"github.com/avelmore/deckvault/internal/logging"
	"github.com/avelmore/deckvault/internal/server/models"
	"github.com/avelmore/deckvault/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// UserAuth is the slice of the user service the HTTP surface needs.
type UserAuth interface {
	Register(ctx context.Context, login, password string) (*services.TokenPair, error)
	Login(ctx context.Context, login, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	ParseAccessToken(token string) (string, error)
}

// DecklistManager covers template CRUD.
type DecklistManager interface {
	Create(ctx context.Context, userID string, d *models.Decklist) (*models.Decklist, error)
	Get(ctx context.Context, userID string, id int64) (*models.Decklist, error)
	List(ctx context.Context, userID string) ([]*models.Decklist, error)
	Update(ctx context.Context, userID string, d *models.Decklist) (*models.Decklist, error)
	Delete(ctx context.Context, userID string, id int64) error
}

// InventoryManager covers SKU CRUD and price statistics.
type InventoryManager interface {
	Create(ctx context.Context, userID string, item *models.InventoryItem) (*models.InventoryItem, error)
	Get(ctx context.Context, userID string, id int64) (*models.InventoryItem, error)
	List(ctx context.Context, userID string) ([]*models.InventoryItem, error)
	Patch(ctx context.Context, userID string, id int64, patch *models.InventoryPatch) (*models.InventoryItem, error)
	Delete(ctx context.Context, userID string, id int64) error
	PriceStats(ctx context.Context, userID string, name string) (*models.CardPriceStats, error)
}

// DeckLifecycle covers the deck instance operations.
type DeckLifecycle interface {
	Materialize(ctx context.Context, userID string, templateID int64) (*services.MaterializeResult, error)
	Reoptimize(ctx context.Context, userID string, instanceID int64) (*services.ReoptimizeResult, error)
	AddCard(ctx context.Context, userID string, instanceID, itemID int64, quantity int) error
	RemoveCard(ctx context.Context, userID string, instanceID, reservationID int64, quantity int) error
	Release(ctx context.Context, userID string, instanceID int64) error
}

// DetailReader covers the aggregate instance view.
type DetailReader interface {
	GetDetails(ctx context.Context, userID string, instanceID int64) (*models.DeckInstanceDetails, error)
}

// Handlers holds the services behind the HTTP surface.
type Handlers struct {
	users     UserAuth
	decklists DecklistManager
	inventory InventoryManager
	decks     DeckLifecycle
	details   DetailReader
	logger    logging.Logger
}

func NewHandlers(
	users UserAuth,
	decklists DecklistManager,
	inventory InventoryManager,
	decks DeckLifecycle,
	details DetailReader,
	logger logging.Logger,
) *Handlers {
	return &Handlers{
		users:     users,
		decklists: decklists,
		inventory: inventory,
		decks:     decks,
		details:   details,
		logger:    logger.With("component", "httpapi"),
	}
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// notblank: required strings that must carry non-whitespace content
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	}
}

// writeError maps service errors to HTTP answers. Anything unexpected is
// logged with the operation name and answered with a generic 500.
func (h *Handlers) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorNotAnInstance):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: "NOT_FOUND"})
	case errors.Is(err, common.ErrorInsufficientStock):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "insufficient availability", Code: "INSUFFICIENT_STOCK"})
	case errors.Is(err, common.ErrorInvalidQuantity):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid quantity", Code: "INVALID_QUANTITY"})
	case errors.Is(err, common.ErrorIsInstance):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "deck instances cannot be edited directly", Code: "IS_INSTANCE"})
	case errors.Is(err, common.ErrorItemReserved):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "item has active reservations", Code: "ITEM_RESERVED"})
	case errors.Is(err, common.ErrorAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "already exists", Code: "ALREADY_EXISTS"})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Code: "UNAUTHORIZED"})
	default:
		h.logger.Error(c.Request.Context(), "internal error",
			"request_id", c.GetString(ctxKeyRequestID), "op", op, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "INTERNAL"})
	}
}

func (h *Handlers) bindError(c *gin.Context, err error) {
	h.logger.Debug(c.Request.Context(), "invalid request body",
		"request_id", c.GetString(ctxKeyRequestID), "error", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id", Code: "INVALID_ID"})
		return 0, false
	}
	return id, true
}

// --- auth ---

func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	pair, err := h.users.Register(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		h.writeError(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	pair, err := h.users.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		h.writeError(c, "login", err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	pair, err := h.users.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(c, "refresh", err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// --- decklists ---

func (h *Handlers) ListDecklists(c *gin.Context) {
	lists, err := h.decklists.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, "list decklists", err)
		return
	}
	if lists == nil {
		lists = []*models.Decklist{}
	}
	c.JSON(http.StatusOK, lists)
}

func (h *Handlers) CreateDecklist(c *gin.Context) {
	var req DecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	created, err := h.decklists.Create(c.Request.Context(), currentUserID(c), &models.Decklist{
		Name:        req.Name,
		Format:      req.Format,
		Description: req.Description,
		Cards:       req.cards(),
	})
	if err != nil {
		h.writeError(c, "create decklist", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handlers) GetDecklist(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	d, err := h.decklists.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, "get decklist", err)
		return
	}

	c.JSON(http.StatusOK, d)
}

func (h *Handlers) UpdateDecklist(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req DecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	updated, err := h.decklists.Update(c.Request.Context(), currentUserID(c), &models.Decklist{
		ID:          id,
		Name:        req.Name,
		Format:      req.Format,
		Description: req.Description,
		Cards:       req.cards(),
	})
	if err != nil {
		h.writeError(c, "update decklist", err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handlers) DeleteDecklist(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.decklists.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		h.writeError(c, "delete decklist", err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// --- inventory ---

func (h *Handlers) ListInventory(c *gin.Context) {
	items, err := h.inventory.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, "list inventory", err)
		return
	}
	if items == nil {
		items = []*models.InventoryItem{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handlers) CreateInventoryItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	created, err := h.inventory.Create(c.Request.Context(), currentUserID(c), &models.InventoryItem{
		Name:          req.Name,
		SetCode:       req.Set,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		Folder:        req.Folder,
	})
	if err != nil {
		h.writeError(c, "create inventory item", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handlers) GetInventoryItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.inventory.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, "get inventory item", err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handlers) PatchInventoryItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req PatchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	updated, err := h.inventory.Patch(c.Request.Context(), currentUserID(c), id, &models.InventoryPatch{
		Name:          req.Name,
		SetCode:       req.Set,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		Folder:        req.Folder,
	})
	if err != nil {
		h.writeError(c, "patch inventory item", err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handlers) DeleteInventoryItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.inventory.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		h.writeError(c, "delete inventory item", err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// PriceStats answers GET /api/inventory/price-stats?name=...
func (h *Handlers) PriceStats(c *gin.Context) {
	name := c.Query("name")
	if strings.TrimSpace(name) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing name", Code: "INVALID_REQUEST"})
		return
	}

	stats, err := h.inventory.PriceStats(c.Request.Context(), currentUserID(c), name)
	if err != nil {
		h.writeError(c, "price stats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
