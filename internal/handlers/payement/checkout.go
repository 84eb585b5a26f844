// Package payement porte le tunnel de paiement : création du checkout,
// webhook Stripe et page de succès.
package payement

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velora_back_end/internal/checkout"
	"velora_back_end/internal/models"
	"velora_back_end/internal/pricing"
)

type Handler struct {
	engine       *pricing.Engine
	assembler    *checkout.Assembler
	orchestrator *checkout.Orchestrator
	reconciler   *checkout.Reconciler
}

func NewHandler(engine *pricing.Engine, assembler *checkout.Assembler, orchestrator *checkout.Orchestrator, reconciler *checkout.Reconciler) *Handler {
	return &Handler{
		engine:       engine,
		assembler:    assembler,
		orchestrator: orchestrator,
		reconciler:   reconciler,
	}
}

// POST /api/checkout — chiffre le panier côté serveur, crée la commande
// PENDING et ouvre la session de paiement hébergée. Les prix envoyés par le
// client ne sont jamais utilisés.
func (h *Handler) Checkout(c *gin.Context) {
	var req struct {
		Items []struct {
			ProductID string `json:"product_id" binding:"required"`
			VariantID string `json:"variant_id"`
			Quantity  int    `json:"quantity" binding:"required"`
		} `json:"items" binding:"required"`
		ShippingInfo models.ShippingInfo `json:"shippingInfo" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	lines := make([]pricing.LineRequest, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := gocql.ParseUUID(item.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide: " + item.ProductID})
			return
		}
		lines = append(lines, pricing.LineRequest{
			ProductID: productID,
			Quantity:  item.Quantity,
			Variant:   item.VariantID,
		})
	}

	ctx := c.Request.Context()

	quote, err := h.engine.Quote(ctx, lines)
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := h.assembler.Assemble(ctx, userID, quote, req.ShippingInfo)
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := h.orchestrator.StartSession(ctx, order)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId":   session.ID,
		"url":         session.URL,
		"orderId":     order.ID.String(),
		"orderNumber": order.OrderNumber,
	})
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
		c.JSON(http.StatusBadGateway, gin.H{"error": "Service de paiement indisponible"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
	}
}
