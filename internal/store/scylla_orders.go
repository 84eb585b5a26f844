package store

import (
	"context"
	"errors"
	"time"

	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
)

// ScyllaOrders persiste les commandes. Tables :
//   - orders (order_id) — la commande ;
//   - order_items ((order_id), line_no) — snapshots de lignes ;
//   - orders_by_user ((user_id), created_at DESC, order_id) — historique ;
//   - orders_by_session (session_id) → order_id — retrouvée par la page de
//     succès.
//
// orders_by_user ne porte pas le statut : l'historique liste les ids puis
// relit chaque commande dans orders, la source de vérité.
type ScyllaOrders struct {
	session *gocql.Session
}

func NewScyllaOrders(session *gocql.Session) *ScyllaOrders {
	return &ScyllaOrders{session: session}
}

const orderColumns = `order_id, order_number, user_id, status,
	subtotal_cents, shipping_cents, tax_cents, total_cents,
	shipping_name, shipping_email, shipping_phone, shipping_address,
	shipping_city, shipping_state, shipping_zip, shipping_country,
	stripe_session_id, stripe_payment_id, created_at, updated_at`

// CreateWithItems écrit la commande, ses lignes et l'entrée d'historique en
// un seul batch loggé : tout passe ou rien ne passe.
func (s *ScyllaOrders) CreateWithItems(ctx context.Context, order *models.Order) error {
	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(`INSERT INTO orders (`+orderColumns+`)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.OrderNumber, order.UserID, order.Status,
		order.SubtotalCents, order.ShippingCents, order.TaxCents, order.TotalCents,
		order.ShippingName, order.ShippingEmail, order.ShippingPhone, order.ShippingAddress,
		order.ShippingCity, order.ShippingState, order.ShippingZip, order.ShippingCountry,
		order.StripeSessionID, order.StripePaymentID, order.CreatedAt, order.UpdatedAt)

	for i, item := range order.Items {
		batch.Query(`INSERT INTO order_items (order_id, line_no, product_id, name, price_cents, quantity, variant)
		             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			order.ID, i, item.ProductID, item.Name, item.PriceCents, item.Quantity, item.Variant)
	}

	batch.Query(`INSERT INTO orders_by_user (user_id, created_at, order_id, order_number, total_cents)
	             VALUES (?, ?, ?, ?, ?)`,
		order.UserID, order.CreatedAt, order.ID, order.OrderNumber, order.TotalCents)

	return s.session.ExecuteBatch(batch)
}

func (s *ScyllaOrders) scanOrder(scanner interface{ Scan(...interface{}) error }) (*models.Order, error) {
	var o models.Order
	err := scanner.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status,
		&o.SubtotalCents, &o.ShippingCents, &o.TaxCents, &o.TotalCents,
		&o.ShippingName, &o.ShippingEmail, &o.ShippingPhone, &o.ShippingAddress,
		&o.ShippingCity, &o.ShippingState, &o.ShippingZip, &o.ShippingCountry,
		&o.StripeSessionID, &o.StripePaymentID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (s *ScyllaOrders) loadItems(ctx context.Context, order *models.Order) error {
	iter := s.session.Query(`SELECT product_id, name, price_cents, quantity, variant
	                         FROM order_items WHERE order_id = ?`, order.ID).WithContext(ctx).Iter()
	var it models.OrderItem
	for iter.Scan(&it.ProductID, &it.Name, &it.PriceCents, &it.Quantity, &it.Variant) {
		order.Items = append(order.Items, it)
		it = models.OrderItem{}
	}
	return iter.Close()
}

func (s *ScyllaOrders) GetByID(ctx context.Context, id gocql.UUID) (*models.Order, error) {
	q := s.session.Query(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, id).WithContext(ctx)
	order, err := s.scanOrder(q)
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *ScyllaOrders) GetBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var orderID gocql.UUID
	err := s.session.Query(`SELECT order_id FROM orders_by_session WHERE session_id = ?`, sessionID).
		WithContext(ctx).Scan(&orderID)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, orderID)
}

// GetByPaymentID retrouve la commande par transaction id, chemin rare
// (remboursements) : un scan filtré suffit, pas de table dédiée.
func (s *ScyllaOrders) GetByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	q := s.session.Query(`SELECT `+orderColumns+` FROM orders WHERE stripe_payment_id = ? ALLOW FILTERING`,
		paymentID).WithContext(ctx)
	order, err := s.scanOrder(q)
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *ScyllaOrders) AttachSession(ctx context.Context, orderID gocql.UUID, sessionID string) error {
	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`UPDATE orders SET stripe_session_id = ?, updated_at = ? WHERE order_id = ?`,
		sessionID, time.Now(), orderID)
	batch.Query(`INSERT INTO orders_by_session (session_id, order_id) VALUES (?, ?)`,
		sessionID, orderID)
	return s.session.ExecuteBatch(batch)
}

// MarkPaid fait transiter PENDING → PAID sous LWT. applied=false si le
// statut n'était plus PENDING : l'autre chemin (webhook ou page de succès) a
// gagné la course.
func (s *ScyllaOrders) MarkPaid(ctx context.Context, orderID gocql.UUID, paymentID string) (bool, error) {
	var currentStatus string
	applied, err := s.session.Query(`UPDATE orders SET status = ?, stripe_payment_id = ?, updated_at = ?
	                                 WHERE order_id = ? IF status = ?`,
		models.OrderPaid, paymentID, time.Now(), orderID, models.OrderPending).
		WithContext(ctx).ScanCAS(&currentStatus)
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (s *ScyllaOrders) SetStatus(ctx context.Context, orderID gocql.UUID, status string) error {
	return s.session.Query(`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ?`,
		status, time.Now(), orderID).WithContext(ctx).Exec()
}

// ListByUser retourne l'historique de l'utilisateur, plus récent d'abord.
// Les statuts viennent de orders, jamais de la table d'historique.
func (s *ScyllaOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	iter := s.session.Query(`SELECT order_id FROM orders_by_user WHERE user_id = ?`, userID).
		WithContext(ctx).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	out := make([]models.Order, 0, len(ids))
	for _, orderID := range ids {
		order, err := s.GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, *order)
	}
	return out, nil
}

// GetForUser relit une commande en vérifiant qu'elle appartient bien à
// l'appelant. Une commande d'un autre utilisateur est invisible.
func (s *ScyllaOrders) GetForUser(ctx context.Context, userID string, orderID gocql.UUID) (*models.Order, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, models.ErrNotFound
	}
	return order, nil
}
