package payement

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success — GET /api/checkout/success?session_id=... Le retour navigateur ne
// prouve rien : la session est revérifiée auprès de Stripe avant de montrer
// la commande. Si le webhook n'est pas encore passé, c'est ce chemin qui
// gagne la transition PENDING→PAID.
func (h *Handler) Success(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id manquant"})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	order, status, err := h.reconciler.VerifySuccess(c.Request.Context(), userID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"payment": gin.H{
			"session_id":           status.ID,
			"paid":                 status.Paid,
			"payment_method_types": status.PaymentMethodTypes,
		},
	})
}
