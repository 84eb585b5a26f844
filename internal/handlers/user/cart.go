// Package user expose les endpoints authentifiés côté client : panier et
// historique de commandes.
package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
)

// CartService : règles métier du panier, implémentées par cart.Adapter.
type CartService interface {
	ListItems(ctx context.Context, userID string) ([]models.CartItem, error)
	AddItem(ctx context.Context, userID string, productID gocql.UUID, variantID string, qty int) (*models.CartItem, error)
	SetQuantity(ctx context.Context, userID string, itemID gocql.UUID, qty int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, userID string, itemID gocql.UUID) error
}

type CartHandler struct {
	cart CartService
}

func NewCartHandler(cart CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID := c.GetString("user_id")

	items, err := h.cart.ListItems(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []models.CartItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// POST /api/cart
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req struct {
		ProductID string `json:"product_id" binding:"required"`
		VariantID string `json:"variant_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	productID, err := gocql.ParseUUID(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	item, err := h.cart.AddItem(c.Request.Context(), c.GetString("user_id"), productID, req.VariantID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// PATCH /api/cart/:itemId
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	itemID, err := gocql.ParseUUID(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de ligne invalide"})
		return
	}

	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	item, err := h.cart.SetQuantity(c.Request.Context(), c.GetString("user_id"), itemID, *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	if item == nil {
		// quantité 0 : la ligne a été supprimée (ou l'était déjà)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DELETE /api/cart/:itemId
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	itemID, err := gocql.ParseUUID(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de ligne invalide"})
		return
	}

	if err := h.cart.RemoveItem(c.Request.Context(), c.GetString("user_id"), itemID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrOutOfStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock insuffisant"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Ressource introuvable"})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflit de mise à jour, réessayez"})
	case errors.Is(err, models.ErrExternalService):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Service externe indisponible"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
	}
}
