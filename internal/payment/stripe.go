// Package payment implémente le port checkout.PaymentProvider avec Stripe
// Checkout (sessions hébergées). La clé est posée sur stripe.Key au démarrage.
package payment

import (
	"context"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"

	"velora_back_end/internal/checkout"
)

type StripeProvider struct{}

func NewStripeProvider() *StripeProvider {
	return &StripeProvider{}
}

// CreateSession crée une Checkout Session en mode paiement. Les montants
// sont déjà en centimes, unité mineure attendue par Stripe : aucune
// conversion ici. L'order id voyage dans les métadonnées, le webhook s'en
// sert pour retrouver la commande.
func (p *StripeProvider) CreateSession(ctx context.Context, req checkout.SessionRequest) (*checkout.Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		CustomerEmail: stripe.String(req.CustomerEmail),
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID)
	params.AddMetadata("order_number", req.OrderNumber)

	for _, item := range req.LineItems {
		line := &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(item.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyEUR)),
				UnitAmount: stripe.Int64(item.UnitAmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		}
		if item.Description != "" {
			line.PriceData.ProductData.Description = stripe.String(item.Description)
		}
		params.LineItems = append(params.LineItems, line)
	}

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("création session Stripe: %w", err)
	}

	log.Printf("💳 Session Stripe %s créée pour la commande %s", s.ID, req.OrderNumber)
	return &checkout.Session{ID: s.ID, URL: s.URL}, nil
}

// RetrieveSession relit la session chez Stripe. C'est la seule preuve de
// paiement acceptée par la page de succès.
func (p *StripeProvider) RetrieveSession(ctx context.Context, sessionID string) (*checkout.SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("relecture session Stripe %s: %w", sessionID, err)
	}

	status := &checkout.SessionStatus{
		ID:   s.ID,
		Paid: s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
	if s.PaymentIntent != nil {
		status.PaymentIntentID = s.PaymentIntent.ID
	}
	for _, pm := range s.PaymentMethodTypes {
		status.PaymentMethodTypes = append(status.PaymentMethodTypes, string(pm))
	}
	return status, nil
}
