package product

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velora_back_end/internal/models"
)

// Le cache Redis et l'indexation Elastic sont derrière des gardes nil : ces
// tests exercent les handlers sans infrastructure.

type fakeCatalog struct {
	byID   map[gocql.UUID]*models.Product
	bySlug map[string]*models.Product
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{byID: map[gocql.UUID]*models.Product{}, bySlug: map[string]*models.Product{}}
}

func (f *fakeCatalog) add(p *models.Product) {
	f.byID[p.ID] = p
	f.bySlug[p.Slug] = p
}

func (f *fakeCatalog) ListPublished(_ context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.byID {
		if p.Published {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id gocql.UUID) (*models.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	p, ok := f.bySlug[slug]
	if !ok {
		return nil, models.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) Upsert(_ context.Context, p *models.Product) error {
	f.add(p)
	return nil
}

func (f *fakeCatalog) Delete(_ context.Context, id gocql.UUID) error {
	p, ok := f.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	delete(f.bySlug, p.Slug)
	delete(f.byID, id)
	return nil
}

func newCatalogRouter(catalog Catalog) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(catalog)
	r := gin.New()
	r.GET("/api/products", h.ListProducts)
	r.GET("/api/products/search", h.SearchProducts)
	r.GET("/api/products/:slug", h.GetProductBySlug)
	r.POST("/api/admin/products", h.CreateProduct)
	r.DELETE("/api/admin/products/:id", h.DeleteProduct)
	return r
}

func lampe() *models.Product {
	id, _ := gocql.ParseUUID("11111111-1111-1111-1111-111111111111")
	return &models.Product{ID: id, Slug: "lampe-velora", Name: "Lampe Velora", PriceCents: 2999, Stock: 10, Published: true}
}

func TestListProducts_SeulsLesPublies(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(lampe())
	catalog.add(&models.Product{ID: gocql.TimeUUID(), Slug: "brouillon", Name: "Brouillon", Published: false})

	w := httptest.NewRecorder()
	newCatalogRouter(catalog).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var products []models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "lampe-velora", products[0].Slug)
}

func TestGetProductBySlug(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(lampe())
	r := newCatalogRouter(catalog)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/lampe-velora", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/inexistant", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProductBySlug_DepublieInvisible(t *testing.T) {
	catalog := newFakeCatalog()
	p := lampe()
	p.Published = false
	catalog.add(p)

	w := httptest.NewRecorder()
	newCatalogRouter(catalog).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/lampe-velora", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchProducts_ParametreRequis(t *testing.T) {
	w := httptest.NewRecorder()
	newCatalogRouter(newFakeCatalog()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/search", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProduct_PrixEnCentimes(t *testing.T) {
	catalog := newFakeCatalog()
	r := newCatalogRouter(catalog)

	body := `{"slug": "tapis", "name": "Tapis Velora", "price": "49.90", "stock": 5, "published": true}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	stored := catalog.bySlug["tapis"]
	require.NotNil(t, stored)
	assert.Equal(t, int64(4990), stored.PriceCents)
}

func TestCreateProduct_PrixInvalide(t *testing.T) {
	r := newCatalogRouter(newFakeCatalog())
	body := `{"slug": "tapis", "name": "Tapis", "price": "pas-un-prix"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteProduct_Inconnu(t *testing.T) {
	r := newCatalogRouter(newFakeCatalog())
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/products/"+gocql.TimeUUID().String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
