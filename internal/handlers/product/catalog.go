// Package product expose le catalogue : listing public (mis en cache Redis),
// fiche produit par slug, recherche Elasticsearch et CRUD admin.
package product

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	services "velora_back_end/internal/service"
)

const catalogCacheKey = "products:published"

// Catalog : persistance produit, implémentée par store.ScyllaProducts.
type Catalog interface {
	ListPublished(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id gocql.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Upsert(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id gocql.UUID) error
}

type Handler struct {
	catalog Catalog
}

func NewHandler(catalog Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// GET /api/products — catalogue publié, cache Redis 1h
func (h *Handler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if database.Redis != nil {
		if val, err := database.Redis.Get(ctx, catalogCacheKey).Result(); err == nil && val != "" {
			var cached []models.Product
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	products, err := h.catalog.ListPublished(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catalogue"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	if database.Redis != nil {
		if data, err := json.Marshal(products); err == nil {
			database.Redis.Set(ctx, catalogCacheKey, data, time.Hour)
		}
	}

	c.JSON(http.StatusOK, products)
}

// GET /api/products/:slug
func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}
	if !product.Published {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// GET /api/products/search?q=...
func (h *Handler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}

	results, err := services.SearchProducts(query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Recherche indisponible"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}
