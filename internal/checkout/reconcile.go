package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
)

// Reconciler fait transiter les commandes au rythme des événements du
// prestataire. Le webhook et la page de succès passent tous les deux par
// MarkPaid (LWT) : un seul des deux gagne la transition PENDING→PAID et
// exécute les effets de bord, l'autre constate et s'arrête.
type Reconciler struct {
	orders       OrderStore
	fulfillments FulfillmentStore
	carts        CartClearer
	notifier     Notifier
	provider     PaymentProvider
}

func NewReconciler(orders OrderStore, fulfillments FulfillmentStore, carts CartClearer, notifier Notifier, provider PaymentProvider) *Reconciler {
	return &Reconciler{
		orders:       orders,
		fulfillments: fulfillments,
		carts:        carts,
		notifier:     notifier,
		provider:     provider,
	}
}

// HandleCheckoutCompleted traite "checkout.session.completed". La commande
// est retrouvée par l'order id des métadonnées, pas par session id. Une
// erreur de store remonte au handler qui répond 500 : Stripe relivrera, et
// le CAS rend la relivraison inoffensive.
func (r *Reconciler) HandleCheckoutCompleted(ctx context.Context, orderID gocql.UUID, paymentIntentID string) error {
	order, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Printf("⚠️ Webhook pour commande inconnue %s, on ignore", orderID)
			return nil
		}
		return err
	}

	applied, err := r.orders.MarkPaid(ctx, order.ID, paymentIntentID)
	if err != nil {
		return err
	}
	if !applied {
		log.Printf("🔁 Commande %s déjà réconciliée, livraison dupliquée ignorée", order.OrderNumber)
		return r.ensureSideEffects(ctx, order)
	}

	order.Status = models.OrderPaid
	order.StripePaymentID = paymentIntentID
	return r.paidSideEffects(ctx, order)
}

// HandleChargeRefunded traite "charge.refunded" : la commande est retrouvée
// par le transaction id enregistré au paiement, et passe en REFUNDED quel
// que soit son statut courant (terminal).
func (r *Reconciler) HandleChargeRefunded(ctx context.Context, paymentIntentID string) error {
	order, err := r.orders.GetByPaymentID(ctx, paymentIntentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Printf("⚠️ Remboursement pour paiement inconnu %s, on ignore", paymentIntentID)
			return nil
		}
		return err
	}

	if err := r.orders.SetStatus(ctx, order.ID, models.OrderRefunded); err != nil {
		return err
	}
	log.Printf("💰 Commande %s remboursée (paiement %s)", order.OrderNumber, paymentIntentID)
	return nil
}

// VerifySuccess est le chemin de la page de succès : la redirection
// navigateur ne vaut pas preuve de paiement, on revérifie la session auprès
// du prestataire avant toute mutation. Si le webhook est déjà passé, le CAS
// échoue et on ne refait aucun effet de bord.
func (r *Reconciler) VerifySuccess(ctx context.Context, userID, sessionID string) (*models.Order, *SessionStatus, error) {
	callCtx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	status, err := r.provider.RetrieveSession(callCtx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: relecture session: %v", models.ErrExternalService, err)
	}
	if !status.Paid {
		return nil, nil, models.ErrNotFound
	}

	order, err := r.orders.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if order.UserID != userID {
		return nil, nil, models.ErrNotFound
	}

	applied, err := r.orders.MarkPaid(ctx, order.ID, status.PaymentIntentID)
	if err != nil {
		return nil, nil, err
	}
	if applied {
		order.Status = models.OrderPaid
		order.StripePaymentID = status.PaymentIntentID
		if err := r.paidSideEffects(ctx, order); err != nil {
			return nil, nil, err
		}
	} else {
		// Le webhook a gagné : on relit l'état final.
		order, err = r.orders.GetByID(ctx, order.ID)
		if err != nil {
			return nil, nil, err
		}
		if err := r.ensureSideEffects(ctx, order); err != nil {
			return nil, nil, err
		}
	}

	return order, status, nil
}

// ensureSideEffects rattrape un gagnant du CAS tombé en plein milieu de ses
// effets : la transition est appliquée mais le fulfillment n'existe pas
// encore. Le fulfillment (un par commande) sert de marqueur — absent, les
// effets sont rejoués ; présent, tout a déjà été fait.
func (r *Reconciler) ensureSideEffects(ctx context.Context, order *models.Order) error {
	_, err := r.fulfillments.GetByOrder(ctx, order.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	log.Printf("🔧 Effets de paiement incomplets pour %s, reprise", order.OrderNumber)
	return r.paidSideEffects(ctx, order)
}

// paidSideEffects : effets exécutés une seule fois, par le gagnant du CAS —
// création du fulfillment, email de confirmation, vidage du panier.
func (r *Reconciler) paidSideEffects(ctx context.Context, order *models.Order) error {
	now := time.Now()
	if err := r.fulfillments.Create(ctx, &models.Fulfillment{
		ID:        gocql.TimeUUID(),
		OrderID:   order.ID,
		Status:    models.FulfillmentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return err
	}

	// L'échec de notification est absorbé : il ne doit jamais faire échouer
	// la réconciliation.
	if err := r.notifier.SendOrderConfirmation(order); err != nil {
		log.Printf("❌ Envoi confirmation commande %s échoué: %v", order.OrderNumber, err)
	}

	if err := r.carts.Clear(ctx, order.UserID); err != nil {
		log.Printf("❌ Vidage panier de %s échoué après paiement: %v", order.UserID, err)
	}

	log.Printf("✅ Commande %s payée, fulfillment créé, panier vidé", order.OrderNumber)
	return nil
}
