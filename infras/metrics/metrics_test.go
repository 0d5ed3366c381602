package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resort/infras/metrics"

	"github.com/stretchr/testify/assert"
)

func TestHandler_ExposesCounters(t *testing.T) {
	metrics.Register()
	metrics.Register()

	metrics.IncBookingCreated("ONLINE")
	metrics.IncPaymentVerification(metrics.ResultSuccess)
	metrics.IncPromoValidation(false)
	metrics.IncEmailSent(true)
	metrics.ObserveHTTPRequest("/api/rooms", http.MethodGet, http.StatusOK, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, `resort_booking_created_total{source="ONLINE"}`)
	assert.Contains(t, body, `resort_payment_verification_total{result="success"}`)
	assert.Contains(t, body, `resort_promo_validation_total{result="failed"}`)
	assert.Contains(t, body, `resort_email_sent_total{result="success"}`)
	assert.Contains(t, body, `resort_http_requests_total{method="GET",route="/api/rooms",status="200"}`)
}
