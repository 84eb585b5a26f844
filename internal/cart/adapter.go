// Package cart applique les règles métier du panier (existence produit,
// stock, propriété des lignes, upsert) au-dessus du store ScyllaDB.
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
	"velora_back_end/internal/money"
)

// Catalog : lecture produit faisant autorité.
type Catalog interface {
	GetByID(ctx context.Context, id gocql.UUID) (*models.Product, error)
}

// LineStore : persistance brute des lignes de panier. Les mises à jour de
// quantité concurrentes passent par un compare-and-swap par ligne (LWT côté
// Scylla) pour ne jamais perdre un incrément.
type LineStore interface {
	List(ctx context.Context, userID string) ([]models.CartItem, error)
	Get(ctx context.Context, userID string, itemID gocql.UUID) (*models.CartItem, error)
	// ClaimLine réserve (user, produit, variante) → itemID dans la table de
	// dédoublonnage. claimed=false signifie qu'une ligne existe déjà ; l'id
	// retourné est alors celui de la ligne existante.
	ClaimLine(ctx context.Context, userID string, productID gocql.UUID, variantID string, itemID gocql.UUID) (gocql.UUID, bool, error)
	InsertLine(ctx context.Context, item *models.CartItem) error
	// CompareAndSetQuantity n'applique la nouvelle quantité que si la
	// quantité courante vaut encore expected.
	CompareAndSetQuantity(ctx context.Context, userID string, itemID gocql.UUID, expected, next int) (bool, error)
	UpdateQuantity(ctx context.Context, userID string, itemID gocql.UUID, quantity int) error
	Delete(ctx context.Context, userID string, itemID gocql.UUID, productID gocql.UUID, variantID string) error
	Clear(ctx context.Context, userID string) error
}

const casRetries = 3

type Adapter struct {
	catalog Catalog
	lines   LineStore
}

func NewAdapter(catalog Catalog, lines LineStore) *Adapter {
	return &Adapter{catalog: catalog, lines: lines}
}

// AddItem ajoute qty au panier de l'utilisateur. Si une ligne existe déjà
// pour (produit, variante), sa quantité est incrémentée.
func (a *Adapter) AddItem(ctx context.Context, userID string, productID gocql.UUID, variantID string, qty int) (*models.CartItem, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantité invalide", models.ErrValidation)
	}

	product, err := a.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Published {
		return nil, models.ErrNotFound
	}
	if product.Stock <= 0 {
		return nil, models.ErrOutOfStock
	}

	newID := gocql.TimeUUID()
	itemID, claimed, err := a.lines.ClaimLine(ctx, userID, productID, variantID, newID)
	if err != nil {
		return nil, err
	}

	if claimed {
		item := &models.CartItem{
			ItemID:    newID,
			UserID:    userID,
			ProductID: productID,
			VariantID: variantID,
			Quantity:  qty,
			AddedAt:   time.Now(),
		}
		if err := a.lines.InsertLine(ctx, item); err != nil {
			return nil, err
		}
		a.attachSnapshot(ctx, item)
		return item, nil
	}

	// Ligne existante : incrément sous CAS pour survivre à deux ajouts
	// simultanés du même produit.
	for attempt := 0; attempt < casRetries; attempt++ {
		current, err := a.lines.Get(ctx, userID, itemID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			// La ligne a été supprimée entre-temps : on la recrée sous
			// l'id déjà réservé.
			item := &models.CartItem{
				ItemID:    itemID,
				UserID:    userID,
				ProductID: productID,
				VariantID: variantID,
				Quantity:  qty,
				AddedAt:   time.Now(),
			}
			if err := a.lines.InsertLine(ctx, item); err != nil {
				return nil, err
			}
			a.attachSnapshot(ctx, item)
			return item, nil
		}

		applied, err := a.lines.CompareAndSetQuantity(ctx, userID, itemID, current.Quantity, current.Quantity+qty)
		if err != nil {
			return nil, err
		}
		if applied {
			current.Quantity += qty
			a.attachSnapshot(ctx, current)
			return current, nil
		}
	}

	return nil, models.ErrConflict
}

// SetQuantity fixe la quantité d'une ligne. qty == 0 supprime la ligne
// (idempotent). Une ligne appartenant à un autre utilisateur est invisible :
// la recherche se fait dans la partition de l'appelant, donc NotFound.
func (a *Adapter) SetQuantity(ctx context.Context, userID string, itemID gocql.UUID, qty int) (*models.CartItem, error) {
	if qty < 0 {
		return nil, fmt.Errorf("%w: quantité négative", models.ErrValidation)
	}

	current, err := a.lines.Get(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		if qty == 0 {
			return nil, nil // déjà supprimée, pas une erreur
		}
		return nil, models.ErrNotFound
	}

	if qty == 0 {
		if err := a.lines.Delete(ctx, userID, itemID, current.ProductID, current.VariantID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := a.lines.UpdateQuantity(ctx, userID, itemID, qty); err != nil {
		return nil, err
	}
	current.Quantity = qty
	a.attachSnapshot(ctx, current)
	return current, nil
}

// RemoveItem supprime une ligne. Supprimer une ligne déjà absente n'est pas
// une erreur.
func (a *Adapter) RemoveItem(ctx context.Context, userID string, itemID gocql.UUID) error {
	current, err := a.lines.Get(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if current == nil {
		return nil
	}
	return a.lines.Delete(ctx, userID, itemID, current.ProductID, current.VariantID)
}

// ListItems retourne les lignes de l'utilisateur, plus récentes d'abord,
// enrichies du snapshot produit pour l'affichage.
func (a *Adapter) ListItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	items, err := a.lines.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		a.attachSnapshot(ctx, &items[i])
	}
	return items, nil
}

// Clear vide le panier. Vider un panier déjà vide est un no-op.
func (a *Adapter) Clear(ctx context.Context, userID string) error {
	return a.lines.Clear(ctx, userID)
}

func (a *Adapter) attachSnapshot(ctx context.Context, item *models.CartItem) {
	product, err := a.catalog.GetByID(ctx, item.ProductID)
	if err != nil {
		return // le produit a pu disparaître, la ligne reste affichable sans snapshot
	}
	imageURL := ""
	if len(product.ImageURLs) > 0 {
		imageURL = product.ImageURLs[0]
	}
	item.Product = &models.CartProductSnapshot{
		Name:       product.Name,
		PriceCents: product.PriceCents,
		Price:      money.FormatCents(product.PriceCents),
		ImageURL:   imageURL,
		Stock:      product.Stock,
	}
}
