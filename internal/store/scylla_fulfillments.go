package store

import (
	"context"
	"errors"
	"time"

	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
)

// ScyllaFulfillments : un fulfillment par commande, la table est clé par
// order_id. Créé par le gagnant de la transition PENDING→PAID.
type ScyllaFulfillments struct {
	session *gocql.Session
}

func NewScyllaFulfillments(session *gocql.Session) *ScyllaFulfillments {
	return &ScyllaFulfillments{session: session}
}

func (s *ScyllaFulfillments) Create(ctx context.Context, f *models.Fulfillment) error {
	return s.session.Query(`INSERT INTO fulfillments (order_id, fulfillment_id, status, tracking_number, carrier, tracking_url, created_at, updated_at)
	                        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.OrderID, f.ID, f.Status, f.TrackingNumber, f.Carrier, f.TrackingURL, f.CreatedAt, f.UpdatedAt).
		WithContext(ctx).Exec()
}

func (s *ScyllaFulfillments) GetByOrder(ctx context.Context, orderID gocql.UUID) (*models.Fulfillment, error) {
	var f models.Fulfillment
	err := s.session.Query(`SELECT order_id, fulfillment_id, status, tracking_number, carrier, tracking_url, created_at, updated_at
	                        FROM fulfillments WHERE order_id = ?`, orderID).WithContext(ctx).
		Scan(&f.OrderID, &f.ID, &f.Status, &f.TrackingNumber, &f.Carrier, &f.TrackingURL, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Update écrase statut et infos de suivi. L'admin renseigne le transporteur
// au passage en SHIPPED.
func (s *ScyllaFulfillments) Update(ctx context.Context, f *models.Fulfillment) error {
	f.UpdatedAt = time.Now()
	return s.session.Query(`UPDATE fulfillments SET status = ?, tracking_number = ?, carrier = ?, tracking_url = ?, updated_at = ?
	                        WHERE order_id = ?`,
		f.Status, f.TrackingNumber, f.Carrier, f.TrackingURL, f.UpdatedAt, f.OrderID).
		WithContext(ctx).Exec()
}
