// Package admin expose la gestion back-office des commandes : changement de
// statut et suivi d'expédition.
package admin

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// Transitions autorisées. REFUNDED n'est atteignable que par le webhook
// charge.refunded, jamais à la main.
var allowedTransitions = map[string][]string{
	models.OrderPending:    {models.OrderCancelled},
	models.OrderPaid:       {models.OrderProcessing, models.OrderShipped},
	models.OrderProcessing: {models.OrderShipped},
	models.OrderShipped:    {models.OrderDelivered},
}

type OrderAdmin interface {
	GetByID(ctx context.Context, id gocql.UUID) (*models.Order, error)
	SetStatus(ctx context.Context, id gocql.UUID, status string) error
}

type FulfillmentAdmin interface {
	GetByOrder(ctx context.Context, orderID gocql.UUID) (*models.Fulfillment, error)
	Update(ctx context.Context, f *models.Fulfillment) error
}

type Handler struct {
	orders       OrderAdmin
	fulfillments FulfillmentAdmin
}

func NewHandler(orders OrderAdmin, fulfillments FulfillmentAdmin) *Handler {
	return &Handler{orders: orders, fulfillments: fulfillments}
}

// PATCH /api/admin/orders/:id/status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de commande invalide"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	order, err := h.orders.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commande"})
		return
	}

	if !transitionAllowed(order.Status, req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Transition de statut interdite",
			"from":  order.Status,
			"to":    req.Status,
		})
		return
	}

	if err := h.orders.SetStatus(c.Request.Context(), orderID, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour statut"})
		return
	}

	order.Status = req.Status
	go func(o models.Order, status string) {
		if err := utils.SendOrderStatusEmail(o, status); err != nil {
			log.Printf("❌ Email statut %s non envoyé pour %s: %v", status, o.OrderNumber, err)
		}
	}(*order, req.Status)

	log.Printf("📋 Commande %s: statut → %s", order.OrderNumber, req.Status)
	c.JSON(http.StatusOK, order)
}

// PATCH /api/admin/orders/:id/fulfillment — met à jour le suivi d'expédition.
// Passer le fulfillment en SHIPPED expédie aussi la commande et déclenche
// l'e-mail de suivi.
func (h *Handler) UpdateFulfillment(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de commande invalide"})
		return
	}

	var req struct {
		Status         string `json:"status" binding:"required"`
		TrackingNumber string `json:"tracking_number"`
		Carrier        string `json:"carrier"`
		TrackingURL    string `json:"tracking_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}
	if !validFulfillmentStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut de fulfillment inconnu: " + req.Status})
		return
	}

	ctx := c.Request.Context()

	f, err := h.fulfillments.GetByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Aucun fulfillment pour cette commande"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture fulfillment"})
		return
	}

	f.Status = req.Status
	f.TrackingNumber = req.TrackingNumber
	f.Carrier = req.Carrier
	f.TrackingURL = req.TrackingURL

	if err := h.fulfillments.Update(ctx, f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour fulfillment"})
		return
	}

	if req.Status == models.FulfillmentShipped {
		order, err := h.orders.GetByID(ctx, orderID)
		if err == nil {
			if transitionAllowed(order.Status, models.OrderShipped) {
				if err := h.orders.SetStatus(ctx, orderID, models.OrderShipped); err != nil {
					log.Printf("❌ Passage en SHIPPED échoué pour %s: %v", order.OrderNumber, err)
				} else {
					order.Status = models.OrderShipped
				}
			}
			go func(o models.Order, ff models.Fulfillment) {
				if err := utils.SendShippingEmail(o, ff); err != nil {
					log.Printf("❌ Email d'expédition non envoyé pour %s: %v", o.OrderNumber, err)
				}
			}(*order, *f)
		}
	}

	c.JSON(http.StatusOK, f)
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func validFulfillmentStatus(status string) bool {
	switch status {
	case models.FulfillmentPending, models.FulfillmentOrdered, models.FulfillmentShipped,
		models.FulfillmentDelivered, models.FulfillmentCancelled:
		return true
	}
	return false
}
