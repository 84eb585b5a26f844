// Package checkout porte le cœur du tunnel d'achat : assemblage de la
// commande, création de la session de paiement hébergée et réconciliation
// des événements du prestataire. Les dépendances I/O sont des interfaces,
// implémentées par internal/store, internal/payment et internal/utils.
package checkout

import (
	"context"

	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
)

type OrderStore interface {
	// CreateWithItems persiste la commande et ses snapshots de lignes en un
	// seul batch atomique : jamais de commande sans lignes ni l'inverse.
	CreateWithItems(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id gocql.UUID) (*models.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	AttachSession(ctx context.Context, orderID gocql.UUID, sessionID string) error
	// MarkPaid est un compare-and-swap : la transition n'est appliquée que
	// si le statut courant est encore PENDING. applied=false signifie que
	// quelqu'un d'autre a gagné la course (webhook vs page de succès).
	MarkPaid(ctx context.Context, orderID gocql.UUID, paymentID string) (applied bool, err error)
	SetStatus(ctx context.Context, orderID gocql.UUID, status string) error
}

type FulfillmentStore interface {
	Create(ctx context.Context, f *models.Fulfillment) error
	GetByOrder(ctx context.Context, orderID gocql.UUID) (*models.Fulfillment, error)
}

type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

type Notifier interface {
	SendOrderConfirmation(order *models.Order) error
}

// --- Prestataire de paiement hébergé (Stripe Checkout) ---

type SessionLineItem struct {
	Name            string
	Description     string
	UnitAmountCents int64
	Quantity        int64
}

type SessionRequest struct {
	OrderID       string
	OrderNumber   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	LineItems     []SessionLineItem
}

type Session struct {
	ID  string
	URL string
}

type SessionStatus struct {
	ID                 string
	Paid               bool
	PaymentIntentID    string
	PaymentMethodTypes []string
}

type PaymentProvider interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*SessionStatus, error)
}
