package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velora_back_end/internal/models"
)

type fakeOrders struct {
	byID map[gocql.UUID]*models.Order
}

func (f *fakeOrders) GetByID(_ context.Context, id gocql.UUID) (*models.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) SetStatus(_ context.Context, id gocql.UUID, status string) error {
	o, ok := f.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	o.Status = status
	return nil
}

type fakeFulfillments struct {
	byOrder map[gocql.UUID]*models.Fulfillment
}

func (f *fakeFulfillments) GetByOrder(_ context.Context, orderID gocql.UUID) (*models.Fulfillment, error) {
	ff, ok := f.byOrder[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *ff
	return &cp, nil
}

func (f *fakeFulfillments) Update(_ context.Context, ff *models.Fulfillment) error {
	cp := *ff
	f.byOrder[ff.OrderID] = &cp
	return nil
}

func newAdminEnv(status string) (*fakeOrders, *fakeFulfillments, *gin.Engine, gocql.UUID) {
	gin.SetMode(gin.TestMode)

	orderID := gocql.TimeUUID()
	orders := &fakeOrders{byID: map[gocql.UUID]*models.Order{
		orderID: {ID: orderID, OrderNumber: "VL-TEST-01", Status: status, ShippingEmail: "alice@example.com"},
	}}
	fulfillments := &fakeFulfillments{byOrder: map[gocql.UUID]*models.Fulfillment{
		orderID: {ID: gocql.TimeUUID(), OrderID: orderID, Status: models.FulfillmentPending},
	}}

	h := NewHandler(orders, fulfillments)
	r := gin.New()
	r.PATCH("/api/admin/orders/:id/status", h.UpdateOrderStatus)
	r.PATCH("/api/admin/orders/:id/fulfillment", h.UpdateFulfillment)
	return orders, fulfillments, r, orderID
}

func patchJSON(r *gin.Engine, path string, body gin.H) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPatch, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateOrderStatus_TransitionValide(t *testing.T) {
	orders, _, r, orderID := newAdminEnv(models.OrderPaid)

	w := patchJSON(r, "/api/admin/orders/"+orderID.String()+"/status", gin.H{"status": models.OrderProcessing})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.OrderProcessing, orders.byID[orderID].Status)
}

func TestUpdateOrderStatus_TransitionInterdite(t *testing.T) {
	orders, _, r, orderID := newAdminEnv(models.OrderPending)

	// PENDING ne s'expédie pas : le paiement d'abord
	w := patchJSON(r, "/api/admin/orders/"+orderID.String()+"/status", gin.H{"status": models.OrderShipped})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.OrderPending, orders.byID[orderID].Status)
}

func TestUpdateOrderStatus_RefundedInterditALaMain(t *testing.T) {
	_, _, r, orderID := newAdminEnv(models.OrderPaid)
	w := patchJSON(r, "/api/admin/orders/"+orderID.String()+"/status", gin.H{"status": models.OrderRefunded})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrderStatus_CommandeInconnue(t *testing.T) {
	_, _, r, _ := newAdminEnv(models.OrderPaid)
	w := patchJSON(r, "/api/admin/orders/"+gocql.TimeUUID().String()+"/status", gin.H{"status": models.OrderProcessing})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateFulfillment_PassageEnShippedExpedieLaCommande(t *testing.T) {
	orders, fulfillments, r, orderID := newAdminEnv(models.OrderPaid)

	w := patchJSON(r, "/api/admin/orders/"+orderID.String()+"/fulfillment", gin.H{
		"status":          models.FulfillmentShipped,
		"tracking_number": "COLIS123",
		"carrier":         "Colissimo",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored := fulfillments.byOrder[orderID]
	assert.Equal(t, models.FulfillmentShipped, stored.Status)
	assert.Equal(t, "COLIS123", stored.TrackingNumber)
	assert.Equal(t, models.OrderShipped, orders.byID[orderID].Status)
}

func TestUpdateFulfillment_StatutInconnu(t *testing.T) {
	_, _, r, orderID := newAdminEnv(models.OrderPaid)
	w := patchJSON(r, "/api/admin/orders/"+orderID.String()+"/fulfillment", gin.H{"status": "EN_ROUTE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateFulfillment_SansFulfillment(t *testing.T) {
	_, fulfillments, r, orderID := newAdminEnv(models.OrderPaid)
	delete(fulfillments.byOrder, orderID)

	w := patchJSON(r, "/api/admin/orders/"+orderID.String()+"/fulfillment", gin.H{"status": models.FulfillmentShipped})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
