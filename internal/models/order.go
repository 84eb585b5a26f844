package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Statuts de commande. Transitions autorisées :
// PENDING → PAID → PROCESSING → SHIPPED → DELIVERED
// PAID → REFUNDED, PENDING → CANCELLED
const (
	OrderPending    = "PENDING"
	OrderPaid       = "PAID"
	OrderProcessing = "PROCESSING"
	OrderShipped    = "SHIPPED"
	OrderDelivered  = "DELIVERED"
	OrderCancelled  = "CANCELLED"
	OrderRefunded   = "REFUNDED"
)

type Order struct {
	ID          gocql.UUID `json:"id"`
	OrderNumber string     `json:"order_number"`
	UserID      string     `json:"user_id"`
	Status      string     `json:"status"`

	// Montants en centimes, total = subtotal + shipping + tax
	SubtotalCents int64 `json:"subtotal_cents"`
	ShippingCents int64 `json:"shipping_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TotalCents    int64 `json:"total_cents"`

	ShippingName    string `json:"shipping_name"`
	ShippingEmail   string `json:"shipping_email"`
	ShippingPhone   string `json:"shipping_phone,omitempty"`
	ShippingAddress string `json:"shipping_address"`
	ShippingCity    string `json:"shipping_city"`
	ShippingState   string `json:"shipping_state"`
	ShippingZip     string `json:"shipping_zip"`
	ShippingCountry string `json:"shipping_country"`

	StripeSessionID string `json:"stripe_session_id,omitempty"`
	StripePaymentID string `json:"stripe_payment_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []OrderItem `json:"items,omitempty"`
}

// OrderItem est un snapshot de ligne figé à la création de la commande.
// Le prix ne bouge plus jamais, même si le catalogue change.
type OrderItem struct {
	ProductID  gocql.UUID `json:"product_id"`
	Name       string     `json:"name"`
	PriceCents int64      `json:"price_cents"`
	Quantity   int        `json:"quantity"`
	Variant    string     `json:"variant,omitempty"`
}

// ShippingInfo est la saisie client au checkout. Tous les champs sont
// obligatoires sauf le téléphone.
type ShippingInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}
