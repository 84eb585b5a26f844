package payment

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velora_back_end/internal/models"
)

const testWebhookSecret = "whsec_test"

func stripeEvent(t *testing.T, eventType string, raw string) stripe.Event {
	t.Helper()
	return stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func signPayload(t *testing.T, payload string) string {
	t.Helper()
	ts := time.Now()
	sig := webhook.ComputeSignature(ts, []byte(payload), testWebhookSecret)
	return fmt.Sprintf("t=%d,v1=%x", ts.Unix(), sig)
}

func TestClassify_CheckoutCompleted(t *testing.T) {
	raw := `{
		"id": "cs_test_123",
		"metadata": {"order_id": "11111111-1111-1111-1111-111111111111", "order_number": "VL-ABC-0A0B0C0D"},
		"payment_intent": {"id": "pi_abc"}
	}`

	event := classify(stripeEvent(t, "checkout.session.completed", raw))
	assert.Equal(t, EventCheckoutCompleted, event.Kind)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", event.OrderID.String())
	assert.Equal(t, "pi_abc", event.PaymentIntentID)
}

func TestClassify_CheckoutCompleted_SansOrderID(t *testing.T) {
	// Session signée mais sans order_id exploitable : on ne saura jamais la
	// traiter, donc EventUnknown et acquittement plutôt que 400 en boucle.
	raw := `{"id": "cs_test_123", "metadata": {}}`
	event := classify(stripeEvent(t, "checkout.session.completed", raw))
	assert.Equal(t, EventUnknown, event.Kind)
}

func TestClassify_ChargeRefunded(t *testing.T) {
	raw := `{"id": "ch_123", "payment_intent": {"id": "pi_abc"}}`

	event := classify(stripeEvent(t, "charge.refunded", raw))
	assert.Equal(t, EventChargeRefunded, event.Kind)
	assert.Equal(t, "pi_abc", event.PaymentIntentID)
}

func TestClassify_EvenementInconnu(t *testing.T) {
	event := classify(stripeEvent(t, "invoice.paid", `{}`))
	assert.Equal(t, EventUnknown, event.Kind)
	assert.Equal(t, "invoice.paid", event.Type)
}

func TestVerifyEvent_SignatureInvalide(t *testing.T) {
	payload := `{"id": "evt_1", "type": "checkout.session.completed", "data": {"object": {}}}`

	_, err := VerifyEvent([]byte(payload), "t=1,v1=deadbeef", testWebhookSecret)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestVerifyEvent_SigneMaisIndechiffrable_Acquitte(t *testing.T) {
	// Payload correctement signé mais que ConstructEvent ne sait pas décoder
	// (format thin, version d'API inconnue) : signature valide, donc on
	// acquitte en EventUnknown au lieu de déclencher des relivraisons.
	payload := `{"id": "evt_2", "type": "v2.core.event", "related_object": {"id": "mtr_1"}}`

	event, err := VerifyEvent([]byte(payload), signPayload(t, payload), testWebhookSecret)
	require.NoError(t, err)
	assert.Equal(t, EventUnknown, event.Kind)
}
