package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/stylescanner/server/internal/database/dbtest"
	"github.com/stylescanner/server/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "whsec_test"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCustomers struct {
	emails map[string]string
	err    error
}

func (f *fakeCustomers) Email(_ context.Context, id string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.emails[id], nil
}

type memLedger struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (m *memLedger) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memLedger) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.keys, k)
	}
	return nil
}

type env struct {
	db        *gorm.DB
	router    *gin.Engine
	customers *fakeCustomers
	ledger    *memLedger
}

func setup(t *testing.T, analytics *Analytics) *env {
	t.Helper()
	db := dbtest.New(t)
	e := &env{
		db:        db,
		customers: &fakeCustomers{emails: map[string]string{"cus_1": "Payer@Example.com"}},
		ledger:    &memLedger{keys: map[string]bool{}},
	}
	svc := NewService(Options{
		DB:            db,
		Customers:     e.customers,
		Ledger:        e.ledger,
		Analytics:     analytics,
		WebhookSecret: testSecret,
		Logger:        zap.NewNop(),
	})
	e.router = gin.New()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(e.router.Group("/api"))
	return e
}

func subscriptionEvent(id, typ, status string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"object":"event","type":%q,"api_version":"2020-08-27",`+
		`"data":{"object":{"id":"sub_1","object":"subscription","status":%q,"customer":"cus_1"}}}`, id, typ, status))
}

func (e *env) post(payload []byte, secret string) *httptest.ResponseRecorder {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/stripe-webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signed.Header)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestWebhookUpdatesSubscription(t *testing.T) {
	e := setup(t, nil)
	u := dbtest.CreateUser(t, e.db, "payer@example.com", models.SubscriptionFree)

	w := e.post(subscriptionEvent("evt_1", "customer.subscription.created", "trialing"), testSecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"received":true}`, w.Body.String())

	var got models.User
	require.NoError(t, e.db.First(&got, "id = ?", u.ID).Error)
	assert.Equal(t, models.SubscriptionTrialing, got.SubscriptionStatus)
	assert.Equal(t, "sub_1", got.SubscriptionID)

	w = e.post(subscriptionEvent("evt_2", "customer.subscription.deleted", "canceled"), testSecret)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, e.db.First(&got, "id = ?", u.ID).Error)
	assert.Equal(t, models.SubscriptionCanceled, got.SubscriptionStatus)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	e := setup(t, nil)
	w := e.post(subscriptionEvent("evt_1", "customer.subscription.created", "active"), "whsec_other")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Webhook Error:")
}

func TestWebhookDeduplicatesEvents(t *testing.T) {
	e := setup(t, nil)
	u := dbtest.CreateUser(t, e.db, "payer@example.com", models.SubscriptionFree)

	payload := subscriptionEvent("evt_dup", "customer.subscription.updated", "active")
	require.Equal(t, http.StatusOK, e.post(payload, testSecret).Code)

	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", u.ID).
		Update("subscription_status", models.SubscriptionFree).Error)

	require.Equal(t, http.StatusOK, e.post(payload, testSecret).Code)
	var got models.User
	require.NoError(t, e.db.First(&got, "id = ?", u.ID).Error)
	assert.Equal(t, models.SubscriptionFree, got.SubscriptionStatus, "replayed event must not be re-applied")
}

func TestWebhookLookupFailureIsRetryable(t *testing.T) {
	e := setup(t, nil)
	dbtest.CreateUser(t, e.db, "payer@example.com", models.SubscriptionFree)
	e.customers.err = errors.New("stripe down")

	payload := subscriptionEvent("evt_retry", "customer.subscription.updated", "active")
	assert.Equal(t, http.StatusInternalServerError, e.post(payload, testSecret).Code)
	assert.Empty(t, e.ledger.keys)

	e.customers.err = nil
	assert.Equal(t, http.StatusOK, e.post(payload, testSecret).Code)
}

func TestWebhookUnknownUserAndEvent(t *testing.T) {
	e := setup(t, nil)
	assert.Equal(t, http.StatusOK,
		e.post(subscriptionEvent("evt_1", "customer.subscription.updated", "active"), testSecret).Code)
	assert.Equal(t, http.StatusOK,
		e.post([]byte(`{"id":"evt_2","object":"event","type":"invoice.paid","data":{"object":{}}}`), testSecret).Code)
}

func TestWebhookSendsPurchaseEvent(t *testing.T) {
	got := make(chan collectBody, 1)
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		raw, _ := io.ReadAll(r.Body)
		var body collectBody
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusNoContent)
		got <- body
	}))
	defer srv.Close()

	analytics := NewAnalytics("G-TEST", "secret", srv.Client(), zap.NewNop()).WithEndpoint(srv.URL + "/mp/collect")
	e := setup(t, analytics)
	u := dbtest.CreateUser(t, e.db, "payer@example.com", models.SubscriptionFree)

	require.Equal(t, http.StatusOK,
		e.post(subscriptionEvent("evt_ga", "customer.subscription.created", "active"), testSecret).Code)

	select {
	case body := <-got:
		assert.Equal(t, u.ID, body.UserID)
		require.Len(t, body.Events, 1)
		assert.Equal(t, "purchase", body.Events[0].Name)
		assert.Equal(t, "active", body.Events[0].Params["subscriptionStatus"])
		assert.Equal(t, "sub_1", body.Events[0].Params["subscriptionId"])
		assert.Contains(t, query, "measurement_id=G-TEST")
	case <-time.After(5 * time.Second):
		t.Fatal("purchase event not delivered")
	}
}

func TestNewAnalyticsRequiresCredentials(t *testing.T) {
	assert.Nil(t, NewAnalytics("", "secret", nil, nil))
	assert.Nil(t, NewAnalytics("G-1", "", nil, nil))
	var a *Analytics
	a.Purchase(context.Background(), "u", "active", "sub", nil)
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, models.SubscriptionActive, mapStatus("active"))
	assert.Equal(t, models.SubscriptionPastDue, mapStatus("unpaid"))
	assert.Equal(t, models.SubscriptionCanceled, mapStatus("paused"))
	assert.Equal(t, models.SubscriptionFree, mapStatus("incomplete"))
}
