package handlers

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/menuvio/backoffice/pkg/billing"
	"github.com/menuvio/backoffice/pkg/database"
	"github.com/menuvio/backoffice/pkg/logger"
	"github.com/menuvio/backoffice/pkg/metrics"
	"github.com/menuvio/backoffice/pkg/models"
)

const testWebhookSecret = "whsec_test_secret"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newWebhookApp(t *testing.T, db *gorm.DB) *echo.Echo {
	t.Helper()
	svc := billing.NewService(db, nil, metrics.New(), logger.Default(), testWebhookSecret)
	h := NewBillingHandler(svc, logger.Default())

	e := echo.New()
	e.POST("/api/billing/subscriptions/", h.HandleWebhook)
	return e
}

func signHeader(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func postWebhook(e *echo.Echo, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/billing/subscriptions/", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandleWebhook_MissingSignatureHeader(t *testing.T) {
	e := newWebhookApp(t, setupTestDB(t))

	rec := postWebhook(e, []byte(`{}`), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request.", rec.Body.String())
}

func TestHandleWebhook_BadSignature(t *testing.T) {
	e := newWebhookApp(t, setupTestDB(t))

	payload := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"object":{}}}`)
	rec := postWebhook(e, payload, signHeader(t, payload, "whsec_wrong"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request.", rec.Body.String())
}

func TestHandleWebhook_ValidDelivery(t *testing.T) {
	db := setupTestDB(t)
	e := newWebhookApp(t, db)

	restaurant := models.Restaurant{Name: "Trattoria Da Test", Active: false}
	require.NoError(t, db.Create(&restaurant).Error)

	payload := []byte(fmt.Sprintf(
		`{"id":"evt_1","object":"event","api_version":"2023-10-16","type":"invoice.paid","data":{"object":{"id":"in_1","object":"invoice","subscription":"sub_123","customer":"cus_456","subscription_details":{"metadata":{"restaurantId":"%d"}}}}}`,
		restaurant.ID,
	))

	rec := postWebhook(e, payload, signHeader(t, payload, testWebhookSecret))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received": true}`, rec.Body.String())

	var got models.Restaurant
	require.NoError(t, db.First(&got, restaurant.ID).Error)
	assert.True(t, got.Active)
}

func TestHandleWebhook_UnknownRestaurantStillAcknowledged(t *testing.T) {
	e := newWebhookApp(t, setupTestDB(t))

	payload := []byte(`{"id":"evt_1","object":"event","api_version":"2023-10-16","type":"invoice.paid","data":{"object":{"id":"in_1","object":"invoice","subscription_details":{"metadata":{"restaurantId":"999"}}}}}`)

	rec := postWebhook(e, payload, signHeader(t, payload, testWebhookSecret))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received": true}`, rec.Body.String())
}
