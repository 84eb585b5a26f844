package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/gocql/gocql"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"

	"velora_back_end/internal/models"
)

// EventKind : les seuls événements Stripe que la réconciliation traite. Tout
// le reste est EventUnknown, loggé et acquitté.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventCheckoutCompleted
	EventChargeRefunded
)

// Event est la version décodée et typée d'un événement webhook, prête à être
// dispatchée sans que le handler touche au JSON Stripe.
type Event struct {
	Kind            EventKind
	Type            string
	OrderID         gocql.UUID // renseigné pour EventCheckoutCompleted
	PaymentIntentID string
}

// VerifyEvent vérifie la signature du webhook puis type l'événement. Une
// signature invalide vaut ErrValidation : le handler répond 400 et Stripe ne
// relivrera pas un payload forgé. Un payload signé mais que la lib ne sait
// pas décoder (événement thin, nouveau format) est un EventUnknown : on
// acquitte, sinon Stripe relivre indéfiniment.
func VerifyEvent(payload []byte, signature, secret string) (*Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, signature, secret)
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: signature webhook invalide: %v", models.ErrValidation, err)
		}
		log.Printf("ℹ️ Événement Stripe signé mais indéchiffrable, acquitté: %v", err)
		return &Event{Kind: EventUnknown}, nil
	}
	return classify(stripeEvent), nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld) ||
		errors.Is(err, webhook.ErrInvalidHeader)
}

// classify type un événement déjà authentifié. Un payload qui ne colle pas
// au format attendu (session sans order_id, JSON illisible) reste
// EventUnknown : signé ou pas, répondre 400 ferait relivrer Stripe en boucle
// pour un événement qu'on ne saura jamais traiter.
func classify(stripeEvent stripe.Event) *Event {
	event := &Event{Kind: EventUnknown, Type: string(stripeEvent.Type)}

	switch stripeEvent.Type {
	case "checkout.session.completed":
		var s stripe.CheckoutSession
		if err := json.Unmarshal(stripeEvent.Data.Raw, &s); err != nil {
			log.Printf("⚠️ Payload checkout.session.completed illisible, acquitté: %v", err)
			return event
		}
		orderID, err := gocql.ParseUUID(s.Metadata["order_id"])
		if err != nil {
			log.Printf("⚠️ Session %s sans order_id exploitable, acquittée", s.ID)
			return event
		}
		event.Kind = EventCheckoutCompleted
		event.OrderID = orderID
		if s.PaymentIntent != nil {
			event.PaymentIntentID = s.PaymentIntent.ID
		}

	case "charge.refunded":
		var ch stripe.Charge
		if err := json.Unmarshal(stripeEvent.Data.Raw, &ch); err != nil {
			log.Printf("⚠️ Payload charge.refunded illisible, acquitté: %v", err)
			return event
		}
		event.Kind = EventChargeRefunded
		if ch.PaymentIntent != nil {
			event.PaymentIntentID = ch.PaymentIntent.ID
		}
	}

	return event
}
