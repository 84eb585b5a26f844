package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"velora_back_end/internal/models"
	"velora_back_end/internal/money"
)

const providerTimeout = 15 * time.Second

// Orchestrator crée la session de paiement hébergée pour une commande
// PENDING et y rattache l'identifiant de session.
type Orchestrator struct {
	provider PaymentProvider
	orders   OrderStore
	baseURL  string
}

func NewOrchestrator(provider PaymentProvider, orders OrderStore, appBaseURL string) *Orchestrator {
	return &Orchestrator{provider: provider, orders: orders, baseURL: appBaseURL}
}

// StartSession construit la requête de session (une ligne par snapshot,
// plus une ligne "Shipping" synthétique si les frais de port sont non nuls)
// et l'envoie au prestataire. En cas d'échec la commande reste PENDING et
// peut être retentée : aucun paiement n'a eu lieu.
func (o *Orchestrator) StartSession(ctx context.Context, order *models.Order) (*Session, error) {
	req := SessionRequest{
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		CustomerEmail: order.ShippingEmail,
		// Le placeholder {CHECKOUT_SESSION_ID} est substitué par Stripe et
		// permet à la page de succès de retrouver la commande.
		SuccessURL: o.baseURL + "/order/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  o.baseURL + "/cart",
	}

	for _, item := range order.Items {
		req.LineItems = append(req.LineItems, SessionLineItem{
			Name:            item.Name,
			UnitAmountCents: item.PriceCents,
			Quantity:        int64(item.Quantity),
		})
	}
	if order.ShippingCents > 0 {
		req.LineItems = append(req.LineItems, SessionLineItem{
			Name:            "Shipping",
			Description:     "Livraison standard",
			UnitAmountCents: order.ShippingCents,
			Quantity:        1,
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	session, err := o.provider.CreateSession(callCtx, req)
	if err != nil {
		log.Printf("❌ Création session paiement échouée pour %s: %v", order.OrderNumber, err)
		return nil, fmt.Errorf("%w: création session: %v", models.ErrExternalService, err)
	}

	if err := o.orders.AttachSession(ctx, order.ID, session.ID); err != nil {
		return nil, err
	}

	log.Printf("💳 Session paiement créée: %s (%s€) pour commande %s",
		session.ID, money.FormatCents(order.TotalCents), order.OrderNumber)
	return session, nil
}
