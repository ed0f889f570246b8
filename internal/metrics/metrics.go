package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values for the auth counters.
const (
	ResultSuccess            = "success"
	ResultValidation         = "validation_error"
	ResultInvalidCredentials = "invalid_credentials"
	ResultInternal           = "internal_error"
)

var (
	// HTTP metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_requests_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	// Auth metrics
	registrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts by result",
		},
		[]string{"result"},
	)

	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	hashDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auth_hash_duration_seconds",
			Help:    "Credential hashing duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"op"}, // hash or verify
	)

	registerOnce sync.Once
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			registrationsTotal,
			loginsTotal,
			hashDuration,
		)
	})
}

// HTTPMetricsMiddleware records HTTP metrics
func HTTPMetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			statusCode := strconv.Itoa(statusFor(c, err))

			httpRequestsTotal.WithLabelValues(c.Request().Method, route, statusCode).Inc()
			httpRequestDuration.WithLabelValues(c.Request().Method, route, statusCode).Observe(duration)

			return err
		}
	}
}

// statusFor predicts the status the error handler will write for err.
func statusFor(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// RecordRegistration counts a registration attempt
func RecordRegistration(result string) {
	registrationsTotal.WithLabelValues(result).Inc()
}

// RecordLogin counts a login attempt
func RecordLogin(result string) {
	loginsTotal.WithLabelValues(result).Inc()
}

// RecordHash records how long a hash or verify call took
func RecordHash(op string, d time.Duration) {
	hashDuration.WithLabelValues(op).Observe(d.Seconds())
}

// PrometheusHandler returns the Prometheus metrics handler
func PrometheusHandler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
