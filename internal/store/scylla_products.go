// Package store contient les implémentations ScyllaDB des ports définis par
// internal/cart et internal/checkout. Schéma : scripts/scylladb_init.cql.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/gocql/gocql"

	"velora_back_end/internal/models"
)

type ScyllaProducts struct {
	session *gocql.Session
}

func NewScyllaProducts(session *gocql.Session) *ScyllaProducts {
	return &ScyllaProducts{session: session}
}

const productColumns = `product_id, slug, name, description, price_cents, stock, image_urls, tags, published, created_at, updated_at`

func (s *ScyllaProducts) scanProduct(scanner interface{ Scan(...interface{}) error }) (*models.Product, error) {
	var p models.Product
	err := scanner.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.PriceCents,
		&p.Stock, &p.ImageURLs, &p.Tags, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *ScyllaProducts) GetByID(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	q := s.session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).WithContext(ctx)
	return s.scanProduct(q)
}

func (s *ScyllaProducts) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	q := s.session.Query(`SELECT `+productColumns+` FROM products_by_slug WHERE slug = ?`, slug).WithContext(ctx)
	return s.scanProduct(q)
}

// ListPublished retourne le catalogue visible en boutique.
func (s *ScyllaProducts) ListPublished(ctx context.Context) ([]models.Product, error) {
	iter := s.session.Query(`SELECT `+productColumns+` FROM products`).WithContext(ctx).Iter()

	var out []models.Product
	var p models.Product
	for iter.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.PriceCents,
		&p.Stock, &p.ImageURLs, &p.Tags, &p.Published, &p.CreatedAt, &p.UpdatedAt) {
		if p.Published {
			out = append(out, p)
		}
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert écrit le produit dans la table principale et la table par slug.
func (s *ScyllaProducts) Upsert(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}

	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	args := []interface{}{p.ID, p.Slug, p.Name, p.Description, p.PriceCents,
		p.Stock, p.ImageURLs, p.Tags, p.Published, p.CreatedAt, p.UpdatedAt}
	batch.Query(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	batch.Query(`INSERT INTO products_by_slug (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	return s.session.ExecuteBatch(batch)
}

func (s *ScyllaProducts) Delete(ctx context.Context, id gocql.UUID) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM products WHERE product_id = ?`, id)
	batch.Query(`DELETE FROM products_by_slug WHERE slug = ?`, p.Slug)
	return s.session.ExecuteBatch(batch)
}
