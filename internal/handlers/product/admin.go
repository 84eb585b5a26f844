package product

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/money"
	services "velora_back_end/internal/service"
)

type productInput struct {
	Slug        string   `json:"slug" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       string   `json:"price" binding:"required"` // "29.99"
	Stock       int      `json:"stock"`
	ImageURLs   []string `json:"image_urls"`
	Tags        []string `json:"tags"`
	Published   bool     `json:"published"`
}

// POST /api/admin/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var req productInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	priceCents, err := money.ParseCents(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prix invalide"})
		return
	}

	p := &models.Product{
		ID:          gocql.TimeUUID(),
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  priceCents,
		Stock:       req.Stock,
		ImageURLs:   req.ImageURLs,
		Tags:        req.Tags,
		Published:   req.Published,
	}

	if err := h.catalog.Upsert(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	h.invalidateCatalogCache(c)
	go services.IndexProduct(*p)

	log.Printf("🆕 Produit créé: %s (%s)", p.Name, p.ID)
	c.JSON(http.StatusCreated, p)
}

// PUT /api/admin/products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	parsed, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}
	id := gocql.UUID(parsed)

	existing, err := h.catalog.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}

	var req productInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	priceCents, err := money.ParseCents(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prix invalide"})
		return
	}

	existing.Slug = req.Slug
	existing.Name = req.Name
	existing.Description = req.Description
	existing.PriceCents = priceCents
	existing.Stock = req.Stock
	existing.ImageURLs = req.ImageURLs
	existing.Tags = req.Tags
	existing.Published = req.Published

	if err := h.catalog.Upsert(c.Request.Context(), existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	h.invalidateCatalogCache(c)
	go services.IndexProduct(*existing)

	c.JSON(http.StatusOK, existing)
}

// DELETE /api/admin/products/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	parsed, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}
	id := gocql.UUID(parsed)

	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}

	h.invalidateCatalogCache(c)
	go services.DeleteProduct(id.String())

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) invalidateCatalogCache(c *gin.Context) {
	if database.Redis != nil {
		database.Redis.Del(c.Request.Context(), catalogCacheKey)
	}
}
