// Package pricing recalcule les montants d'un panier côté serveur, à partir
// des prix catalogue — jamais depuis les prix envoyés par le client.
package pricing

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"

	"velora_back_end/internal/models"
	"velora_back_end/internal/money"
)

// Catalog fournit les prix et stocks faisant autorité.
type Catalog interface {
	GetByID(ctx context.Context, id gocql.UUID) (*models.Product, error)
}

type Config struct {
	FreeShippingThresholdCents int64
	ShippingFlatRateCents      int64
	TaxRatePercent             decimal.Decimal
}

type LineRequest struct {
	ProductID gocql.UUID
	Quantity  int
	Variant   string
}

// Quote : résultat d'un chiffrage, lignes figées + totaux en centimes.
type Quote struct {
	Lines         []models.OrderItem
	SubtotalCents int64
	ShippingCents int64
	TaxCents      int64
	TotalCents    int64
}

type Engine struct {
	catalog Catalog
	cfg     Config
}

func NewEngine(catalog Catalog, cfg Config) *Engine {
	return &Engine{catalog: catalog, cfg: cfg}
}

// Quote chiffre la totalité des lignes ou échoue — pas de résultat partiel.
// Un produit introuvable ou dépublié rejette tout le chiffrage.
func (e *Engine) Quote(ctx context.Context, lines []LineRequest) (*Quote, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: panier vide", models.ErrValidation)
	}

	q := &Quote{Lines: make([]models.OrderItem, 0, len(lines))}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantité invalide pour %s", models.ErrValidation, line.ProductID)
		}

		product, err := e.catalog.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("produit %s: %w", line.ProductID, err)
		}
		if !product.Published {
			return nil, fmt.Errorf("produit %s: %w", line.ProductID, models.ErrNotFound)
		}
		if product.Stock < line.Quantity {
			return nil, fmt.Errorf("produit %s: %w", product.Name, models.ErrOutOfStock)
		}

		q.Lines = append(q.Lines, models.OrderItem{
			ProductID:  product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Quantity:   line.Quantity,
			Variant:    line.Variant,
		})
		q.SubtotalCents += product.PriceCents * int64(line.Quantity)
	}

	q.ShippingCents = e.shippingFor(q.SubtotalCents)
	q.TaxCents = money.PercentOf(q.SubtotalCents, e.cfg.TaxRatePercent)
	q.TotalCents = q.SubtotalCents + q.ShippingCents + q.TaxCents

	return q, nil
}

// shippingFor : gratuit au-dessus du seuil (ou panier à zéro), sinon forfait.
func (e *Engine) shippingFor(subtotalCents int64) int64 {
	if subtotalCents == 0 || subtotalCents >= e.cfg.FreeShippingThresholdCents {
		return 0
	}
	return e.cfg.ShippingFlatRateCents
}
