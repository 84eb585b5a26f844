package payement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83/webhook"

	"velora_back_end/internal/checkout"
	"velora_back_end/internal/models"
	"velora_back_end/internal/pricing"
)

// --- Fakes des ports, câblés sur les vrais services du tunnel ---

type fakeCatalog struct {
	products map[gocql.UUID]*models.Product
}

func (f *fakeCatalog) GetByID(_ context.Context, id gocql.UUID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return p, nil
}

type fakeOrders struct {
	byID        map[gocql.UUID]*models.Order
	markPaidErr error
}

func newFakeOrders() *fakeOrders { return &fakeOrders{byID: map[gocql.UUID]*models.Order{}} }

func (f *fakeOrders) CreateWithItems(_ context.Context, order *models.Order) error {
	cp := *order
	f.byID[order.ID] = &cp
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id gocql.UUID) (*models.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) GetBySessionID(_ context.Context, sessionID string) (*models.Order, error) {
	for _, o := range f.byID {
		if o.StripeSessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeOrders) GetByPaymentID(_ context.Context, paymentID string) (*models.Order, error) {
	for _, o := range f.byID {
		if o.StripePaymentID == paymentID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeOrders) AttachSession(_ context.Context, orderID gocql.UUID, sessionID string) error {
	o, ok := f.byID[orderID]
	if !ok {
		return models.ErrNotFound
	}
	o.StripeSessionID = sessionID
	return nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, orderID gocql.UUID, paymentID string) (bool, error) {
	if f.markPaidErr != nil {
		return false, f.markPaidErr
	}
	o, ok := f.byID[orderID]
	if !ok {
		return false, models.ErrNotFound
	}
	if o.Status != models.OrderPending {
		return false, nil
	}
	o.Status = models.OrderPaid
	o.StripePaymentID = paymentID
	return true, nil
}

func (f *fakeOrders) SetStatus(_ context.Context, orderID gocql.UUID, status string) error {
	o, ok := f.byID[orderID]
	if !ok {
		return models.ErrNotFound
	}
	o.Status = status
	return nil
}

type fakeFulfillments struct{ created []*models.Fulfillment }

func (f *fakeFulfillments) Create(_ context.Context, ff *models.Fulfillment) error {
	cp := *ff
	f.created = append(f.created, &cp)
	return nil
}

func (f *fakeFulfillments) GetByOrder(_ context.Context, orderID gocql.UUID) (*models.Fulfillment, error) {
	for _, ff := range f.created {
		if ff.OrderID == orderID {
			return ff, nil
		}
	}
	return nil, models.ErrNotFound
}

type fakeCarts struct{ clears int }

func (f *fakeCarts) Clear(_ context.Context, _ string) error {
	f.clears++
	return nil
}

type fakeNotifier struct{ sent int }

func (f *fakeNotifier) SendOrderConfirmation(_ *models.Order) error {
	f.sent++
	return nil
}

type fakeProvider struct {
	sessions map[string]*checkout.SessionStatus
}

func (f *fakeProvider) CreateSession(_ context.Context, _ checkout.SessionRequest) (*checkout.Session, error) {
	return &checkout.Session{ID: "cs_test_123", URL: "https://checkout.stripe.test/cs_test_123"}, nil
}

func (f *fakeProvider) RetrieveSession(_ context.Context, sessionID string) (*checkout.SessionStatus, error) {
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return s, nil
}

// --- Environnement de test HTTP ---

type env struct {
	orders       *fakeOrders
	fulfillments *fakeFulfillments
	carts        *fakeCarts
	notifier     *fakeNotifier
	provider     *fakeProvider
	router       *gin.Engine
	productID    gocql.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	productID, _ := gocql.ParseUUID("11111111-1111-1111-1111-111111111111")
	catalog := &fakeCatalog{products: map[gocql.UUID]*models.Product{
		productID: {ID: productID, Name: "Lampe Velora", PriceCents: 2999, Stock: 10, Published: true},
	}}

	e := &env{
		orders:       newFakeOrders(),
		fulfillments: &fakeFulfillments{},
		carts:        &fakeCarts{},
		notifier:     &fakeNotifier{},
		provider:     &fakeProvider{sessions: map[string]*checkout.SessionStatus{}},
		productID:    productID,
	}

	engine := pricing.NewEngine(catalog, pricing.Config{
		FreeShippingThresholdCents: 5000,
		ShippingFlatRateCents:      999,
		TaxRatePercent:             decimal.NewFromInt(8),
	})
	assembler := checkout.NewAssembler(e.orders)
	orchestrator := checkout.NewOrchestrator(e.provider, e.orders, "https://shop.velora.test")
	reconciler := checkout.NewReconciler(e.orders, e.fulfillments, e.carts, e.notifier, e.provider)
	h := NewHandler(engine, assembler, orchestrator, reconciler)

	r := gin.New()
	authed := r.Group("/api")
	authed.Use(func(c *gin.Context) {
		c.Set("user_id", "alice")
		c.Next()
	})
	authed.POST("/checkout", h.Checkout)
	authed.GET("/checkout/success", h.Success)
	r.POST("/api/webhook/stripe", h.StripeWebhook)

	e.router = r
	return e
}

func (e *env) do(method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func checkoutBody(productID gocql.UUID, qty int) []byte {
	body, _ := json.Marshal(gin.H{
		"items": []gin.H{{"product_id": productID.String(), "quantity": qty}},
		"shippingInfo": gin.H{
			"name": "Alice Martin", "email": "alice@example.com",
			"address": "12 rue des Lilas", "city": "Lyon", "state": "Rhône",
			"zip": "69003", "country": "FR",
		},
	})
	return body
}

// --- Checkout ---

func TestCheckout_CreeCommandeEtSession(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/checkout", checkoutBody(e.productID, 2), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		SessionID   string `json:"sessionId"`
		URL         string `json:"url"`
		OrderNumber string `json:"orderNumber"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cs_test_123", resp.SessionID)
	assert.NotEmpty(t, resp.URL)

	require.Len(t, e.orders.byID, 1)
	for _, o := range e.orders.byID {
		assert.Equal(t, models.OrderPending, o.Status)
		// 2 × 29.99€ = 59.98€, port offert au-dessus de 50€, TVA 8%
		assert.Equal(t, int64(5998), o.SubtotalCents)
		assert.Equal(t, int64(0), o.ShippingCents)
		assert.Equal(t, int64(480), o.TaxCents)
		assert.Equal(t, int64(6478), o.TotalCents)
		assert.Equal(t, "cs_test_123", o.StripeSessionID)
	}
}

func TestCheckout_JSONInvalide(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodPost, "/api/checkout", []byte(`{"items": "pas une liste"}`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, e.orders.byID)
}

func TestCheckout_ProduitInconnu(t *testing.T) {
	e := newEnv(t)
	unknown, _ := gocql.ParseUUID("99999999-9999-9999-9999-999999999999")
	w := e.do(http.MethodPost, "/api/checkout", checkoutBody(unknown, 1), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, e.orders.byID, "aucune commande sur chiffrage rejeté")
}

func TestCheckout_StockInsuffisant(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodPost, "/api/checkout", checkoutBody(e.productID, 50), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Stock insuffisant")
}

// --- Webhook ---

func signedWebhookPayload(t *testing.T, secret string, orderID gocql.UUID) ([]byte, string) {
	t.Helper()
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_123",
			"metadata": {"order_id": "%s"},
			"payment_intent": {"id": "pi_abc"}
		}}
	}`, orderID))

	ts := time.Now()
	sig := webhook.ComputeSignature(ts, payload, secret)
	header := fmt.Sprintf("t=%d,v1=%x", ts.Unix(), sig)
	return payload, header
}

func placeOrder(t *testing.T, e *env) *models.Order {
	t.Helper()
	w := e.do(http.MethodPost, "/api/checkout", checkoutBody(e.productID, 2), nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, o := range e.orders.byID {
		return o
	}
	t.Fatal("commande absente")
	return nil
}

func TestWebhook_SignatureValide_ReconcilieLaCommande(t *testing.T) {
	e := newEnv(t)
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	order := placeOrder(t, e)

	payload, header := signedWebhookPayload(t, "whsec_test", order.ID)
	w := e.do(http.MethodPost, "/api/webhook/stripe", payload, map[string]string{"Stripe-Signature": header})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored := e.orders.byID[order.ID]
	assert.Equal(t, models.OrderPaid, stored.Status)
	assert.Equal(t, "pi_abc", stored.StripePaymentID)
	assert.Len(t, e.fulfillments.created, 1)
	assert.Equal(t, 1, e.carts.clears)
	assert.Equal(t, 1, e.notifier.sent)
}

func TestWebhook_SignatureInvalide(t *testing.T) {
	e := newEnv(t)
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	order := placeOrder(t, e)

	payload, _ := signedWebhookPayload(t, "whsec_autre", order.ID)
	w := e.do(http.MethodPost, "/api/webhook/stripe", payload, map[string]string{"Stripe-Signature": "t=0,v1=deadbeef"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.OrderPending, e.orders.byID[order.ID].Status, "payload non signé ne mute rien")
}

func TestWebhook_ErreurStore_Renvoie500PourRelivraison(t *testing.T) {
	e := newEnv(t)
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	order := placeOrder(t, e)
	e.orders.markPaidErr = errors.New("scylla indisponible")

	payload, header := signedWebhookPayload(t, "whsec_test", order.ID)
	w := e.do(http.MethodPost, "/api/webhook/stripe", payload, map[string]string{"Stripe-Signature": header})
	assert.Equal(t, http.StatusInternalServerError, w.Code, "500 pour que Stripe relivre")

	// Relivraison après rétablissement du store
	e.orders.markPaidErr = nil
	w = e.do(http.MethodPost, "/api/webhook/stripe", payload, map[string]string{"Stripe-Signature": header})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OrderPaid, e.orders.byID[order.ID].Status)
}

func TestWebhook_EvenementInconnu_Acquitte(t *testing.T) {
	e := newEnv(t)
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	payload := []byte(`{"id": "evt_2", "type": "invoice.paid", "data": {"object": {}}}`)
	ts := time.Now()
	header := fmt.Sprintf("t=%d,v1=%x", ts.Unix(), webhook.ComputeSignature(ts, payload, "whsec_test"))

	w := e.do(http.MethodPost, "/api/webhook/stripe", payload, map[string]string{"Stripe-Signature": header})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhook_SessionSansOrderID_Acquitte(t *testing.T) {
	e := newEnv(t)
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	order := placeOrder(t, e)

	// Session signée mais sans order_id dans les métadonnées : on ne saura
	// jamais la rattacher à une commande, répondre 400 ferait relivrer
	// Stripe en boucle.
	payload := []byte(`{"id": "evt_3", "type": "checkout.session.completed", "data": {"object": {"id": "cs_autre", "metadata": {}}}}`)
	ts := time.Now()
	header := fmt.Sprintf("t=%d,v1=%x", ts.Unix(), webhook.ComputeSignature(ts, payload, "whsec_test"))

	w := e.do(http.MethodPost, "/api/webhook/stripe", payload, map[string]string{"Stripe-Signature": header})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OrderPending, e.orders.byID[order.ID].Status, "aucune commande mutée")
	assert.Empty(t, e.fulfillments.created)
}

// --- Page de succès ---

func TestSuccess_SansSessionID(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/api/checkout/success", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuccess_SessionPayee(t *testing.T) {
	e := newEnv(t)
	order := placeOrder(t, e)
	e.provider.sessions["cs_test_123"] = &checkout.SessionStatus{
		ID: "cs_test_123", Paid: true, PaymentIntentID: "pi_abc", PaymentMethodTypes: []string{"card"},
	}

	w := e.do(http.MethodGet, "/api/checkout/success?session_id=cs_test_123", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, models.OrderPaid, e.orders.byID[order.ID].Status)
	assert.Len(t, e.fulfillments.created, 1)
	assert.Contains(t, w.Body.String(), `"paid":true`)
}

func TestSuccess_SessionNonPayee(t *testing.T) {
	e := newEnv(t)
	order := placeOrder(t, e)
	e.provider.sessions["cs_test_123"] = &checkout.SessionStatus{ID: "cs_test_123", Paid: false}

	w := e.do(http.MethodGet, "/api/checkout/success?session_id=cs_test_123", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.OrderPending, e.orders.byID[order.ID].Status)
}
