package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
)

// OrderReader : lecture des commandes côté client, implémentée par
// store.ScyllaOrders. Les commandes d'autres utilisateurs sont invisibles.
type OrderReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	GetForUser(ctx context.Context, userID string, orderID gocql.UUID) (*models.Order, error)
}

type OrdersHandler struct {
	orders OrderReader
}

func NewOrdersHandler(orders OrderReader) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// GET /api/orders — historique, plus récent d'abord
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListByUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// GET /api/orders/:id
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de commande invalide"})
		return
	}

	order, err := h.orders.GetForUser(c.Request.Context(), c.GetString("user_id"), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
