package store

import (
	"context"
	"errors"

	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
)

// ScyllaCart persiste les lignes de panier. Deux tables :
//   - cart_items ((user_id), item_id timeuuid DESC) — les lignes, les plus
//     récentes d'abord grâce à l'ordre de clustering ;
//   - cart_lines_by_product ((user_id), product_id, variant_id) → item_id —
//     dédoublonnage (user, produit, variante), réservé par LWT.
type ScyllaCart struct {
	session *gocql.Session
}

func NewScyllaCart(session *gocql.Session) *ScyllaCart {
	return &ScyllaCart{session: session}
}

func (s *ScyllaCart) List(ctx context.Context, userID string) ([]models.CartItem, error) {
	iter := s.session.Query(`SELECT item_id, product_id, variant_id, quantity, added_at
	                         FROM cart_items WHERE user_id = ?`, userID).WithContext(ctx).Iter()

	var out []models.CartItem
	var it models.CartItem
	for iter.Scan(&it.ItemID, &it.ProductID, &it.VariantID, &it.Quantity, &it.AddedAt) {
		it.UserID = userID
		out = append(out, it)
		it = models.CartItem{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ScyllaCart) Get(ctx context.Context, userID string, itemID gocql.UUID) (*models.CartItem, error) {
	var it models.CartItem
	err := s.session.Query(`SELECT item_id, product_id, variant_id, quantity, added_at
	                        FROM cart_items WHERE user_id = ? AND item_id = ?`,
		userID, itemID).WithContext(ctx).
		Scan(&it.ItemID, &it.ProductID, &it.VariantID, &it.Quantity, &it.AddedAt)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	it.UserID = userID
	return &it, nil
}

// ClaimLine tente de réserver (user, produit, variante) par INSERT IF NOT
// EXISTS. Si la réservation échoue, l'item_id existant est retourné : deux
// ajouts concurrents du même produit convergent vers la même ligne.
func (s *ScyllaCart) ClaimLine(ctx context.Context, userID string, productID gocql.UUID, variantID string, itemID gocql.UUID) (gocql.UUID, bool, error) {
	var existingUser string
	var existingProduct gocql.UUID
	var existingVariant string
	var existingItem gocql.UUID

	applied, err := s.session.Query(`INSERT INTO cart_lines_by_product (user_id, product_id, variant_id, item_id)
	                                 VALUES (?, ?, ?, ?) IF NOT EXISTS`,
		userID, productID, variantID, itemID).WithContext(ctx).
		ScanCAS(&existingUser, &existingProduct, &existingVariant, &existingItem)
	if err != nil {
		return gocql.UUID{}, false, err
	}
	if applied {
		return itemID, true, nil
	}
	return existingItem, false, nil
}

func (s *ScyllaCart) InsertLine(ctx context.Context, item *models.CartItem) error {
	return s.session.Query(`INSERT INTO cart_items (user_id, item_id, product_id, variant_id, quantity, added_at)
	                        VALUES (?, ?, ?, ?, ?, ?)`,
		item.UserID, item.ItemID, item.ProductID, item.VariantID, item.Quantity, item.AddedAt).
		WithContext(ctx).Exec()
}

// CompareAndSetQuantity : LWT par ligne, deux incréments concurrents ne se
// perdent jamais — le perdant relit et retente.
func (s *ScyllaCart) CompareAndSetQuantity(ctx context.Context, userID string, itemID gocql.UUID, expected, next int) (bool, error) {
	var current int
	applied, err := s.session.Query(`UPDATE cart_items SET quantity = ?
	                                 WHERE user_id = ? AND item_id = ? IF quantity = ?`,
		next, userID, itemID, expected).WithContext(ctx).ScanCAS(&current)
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (s *ScyllaCart) UpdateQuantity(ctx context.Context, userID string, itemID gocql.UUID, quantity int) error {
	return s.session.Query(`UPDATE cart_items SET quantity = ? WHERE user_id = ? AND item_id = ?`,
		quantity, userID, itemID).WithContext(ctx).Exec()
}

func (s *ScyllaCart) Delete(ctx context.Context, userID string, itemID gocql.UUID, productID gocql.UUID, variantID string) error {
	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM cart_items WHERE user_id = ? AND item_id = ?`, userID, itemID)
	batch.Query(`DELETE FROM cart_lines_by_product WHERE user_id = ? AND product_id = ? AND variant_id = ?`,
		userID, productID, variantID)
	return s.session.ExecuteBatch(batch)
}

// Clear supprime les deux partitions de l'utilisateur. Supprimer une
// partition déjà vide est un no-op côté Scylla : le vidage est idempotent.
func (s *ScyllaCart) Clear(ctx context.Context, userID string) error {
	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM cart_items WHERE user_id = ?`, userID)
	batch.Query(`DELETE FROM cart_lines_by_product WHERE user_id = ?`, userID)
	return s.session.ExecuteBatch(batch)
}
