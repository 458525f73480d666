package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOTPIssued()
	c.RecordOTPIssued()
	c.RecordLoginSuccess()
	c.RecordLoginFailure("invalid_otp")
	c.RecordGoogleLogin()

	if got := testutil.ToFloat64(c.otpIssued); got != 2 {
		t.Errorf("otpIssued = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.loginSuccess); got != 1 {
		t.Errorf("loginSuccess = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.loginFail.WithLabelValues("invalid_otp")); got != 1 {
		t.Errorf("loginFail{invalid_otp} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.googleLogin); got != 1 {
		t.Errorf("googleLogin = %v, want 1", got)
	}
}

func TestHandlerServesExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPStatus(200)

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "noteserver_http_status_total") {
		t.Fatalf("exposition missing noteserver_http_status_total: %q", rr.Body.String())
	}
}
