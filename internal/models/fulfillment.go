package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Statuts de préparation/expédition d'une commande payée.
const (
	FulfillmentPending   = "PENDING"
	FulfillmentOrdered   = "ORDERED"
	FulfillmentShipped   = "SHIPPED"
	FulfillmentDelivered = "DELIVERED"
	FulfillmentCancelled = "CANCELLED"
)

// Fulfillment : exactement un par commande passée en PAID.
type Fulfillment struct {
	ID             gocql.UUID `json:"id"`
	OrderID        gocql.UUID `json:"order_id"`
	Status         string     `json:"status"`
	TrackingNumber string     `json:"tracking_number,omitempty"`
	Carrier        string     `json:"carrier,omitempty"`
	TrackingURL    string     `json:"tracking_url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
