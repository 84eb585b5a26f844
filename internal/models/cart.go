package models

import (
	"time"

	"github.com/gocql/gocql"
)

// CartItem est une ligne de panier persistée. Unique par
// (user_id, product_id, variant_id) — l'unicité est garantie par la table
// de dédoublonnage cart_lines_by_product (voir internal/store).
type CartItem struct {
	ItemID    gocql.UUID `json:"item_id"`
	UserID    string     `json:"user_id"`
	ProductID gocql.UUID `json:"product_id"`
	VariantID string     `json:"variant_id,omitempty"`
	Quantity  int        `json:"quantity"`
	AddedAt   time.Time  `json:"added_at"`

	// Snapshot produit attaché à l'affichage, jamais persisté avec la ligne
	Product *CartProductSnapshot `json:"product,omitempty"`
}

type CartProductSnapshot struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Price      string `json:"price"`
	ImageURL   string `json:"image_url,omitempty"`
	Stock      int    `json:"stock"`
}
