package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resort"

const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_created_total",
			Help:      "Count of bookings created by source.",
		},
		[]string{"source"},
	)

	paymentVerification = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_verification_total",
			Help:      "Count of payment verifications by result.",
		},
		[]string{"result"},
	)

	promoValidation = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promo_validation_total",
			Help:      "Count of promo code validations by result.",
		},
		[]string{"result"},
	)

	emailSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_sent_total",
			Help:      "Count of outgoing emails by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, bookingCreated, paymentVerification, promoValidation, emailSent)
	})
}

func Handler() http.Handler {
	Register()

	return promhttp.Handler()
}

func ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func IncBookingCreated(source string) {
	bookingCreated.WithLabelValues(source).Inc()
}

func IncPaymentVerification(result string) {
	paymentVerification.WithLabelValues(result).Inc()
}

func IncPromoValidation(valid bool) {
	promoValidation.WithLabelValues(result(valid)).Inc()
}

func IncEmailSent(ok bool) {
	emailSent.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return ResultSuccess
	}

	return ResultFailed
}
