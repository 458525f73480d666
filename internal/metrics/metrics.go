// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records auth-flow and HTTP outcomes.
type Collector struct {
	otpIssued    prometheus.Counter
	loginSuccess prometheus.Counter
	loginFail    *prometheus.CounterVec
	googleLogin  prometheus.Counter
	httpStatus   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		otpIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noteserver_otp_issued_total",
			Help: "Total one-time codes generated and dispatched.",
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noteserver_login_success_total",
			Help: "Total successful logins.",
		}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noteserver_login_failure_total",
			Help: "Total failed logins by reason.",
		}, []string{"reason"}),
		googleLogin: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noteserver_google_login_total",
			Help: "Total successful Google sign-ins.",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noteserver_http_status_total",
			Help: "Responses by HTTP status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.otpIssued,
		c.loginSuccess,
		c.loginFail,
		c.googleLogin,
		c.httpStatus,
	)

	return c
}

func (c *Collector) RecordOTPIssued() {
	c.otpIssued.Inc()
}

func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

func (c *Collector) RecordLoginFailure(reason string) {
	c.loginFail.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordGoogleLogin() {
	c.googleLogin.Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the Prometheus scrape handler for the given gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
