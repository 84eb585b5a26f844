package payement

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/models"
	"velora_back_end/internal/payment"
)

// StripeWebhook — POST /api/webhook/stripe. La signature fait foi : un
// payload non signé est rejeté en 400 et Stripe ne le relivrera pas. À
// l'inverse, une erreur de store répond 500 pour provoquer la relivraison ;
// le CAS de MarkPaid rend la relivraison inoffensive.
func (h *Handler) StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	event, err := payment.VerifyEvent(payload, c.GetHeader("Stripe-Signature"), os.Getenv("STRIPE_WEBHOOK_SECRET"))
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			log.Println("❌ Webhook rejeté:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur traitement webhook"})
		return
	}

	ctx := c.Request.Context()

	switch event.Kind {
	case payment.EventCheckoutCompleted:
		if err := h.reconciler.HandleCheckoutCompleted(ctx, event.OrderID, event.PaymentIntentID); err != nil {
			log.Printf("❌ Réconciliation %s échouée: %v", event.OrderID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Réconciliation échouée"})
			return
		}

	case payment.EventChargeRefunded:
		if err := h.reconciler.HandleChargeRefunded(ctx, event.PaymentIntentID); err != nil {
			log.Printf("❌ Traitement remboursement %s échoué: %v", event.PaymentIntentID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Traitement remboursement échoué"})
			return
		}

	default:
		log.Printf("ℹ️ Événement Stripe non géré: %s", event.Type)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
