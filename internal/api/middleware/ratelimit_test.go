package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestClientLimiterBurstThenDeny(t *testing.T) {
	l := newClientLimiter(1) // burst clamps up to minBurst

	for i := 0; i < minBurst; i++ {
		if !l.take("10.0.0.1") {
			t.Fatalf("request %d denied inside burst capacity", i+1)
		}
	}
	if l.take("10.0.0.1") {
		t.Error("request past burst capacity must be denied")
	}
}

func TestClientLimiterIsolatesClients(t *testing.T) {
	l := newClientLimiter(1)

	for i := 0; i < minBurst; i++ {
		l.take("10.0.0.1")
	}
	if !l.take("10.0.0.2") {
		t.Error("a fresh client must not be affected by another client's exhausted bucket")
	}
}

// TestRateLimitMiddlewareEnvelope drains a bucket through the middleware and
// checks the 429 rejection carries the standard error envelope.
func TestRateLimitMiddlewareEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RateLimitMiddleware(1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	var rec *httptest.ResponseRecorder
	for i := 0; i <= minBurst; i++ {
		rec = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.3:1234"
		r.ServeHTTP(rec, req)
	}

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 after bucket exhaustion", rec.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if body.Success || body.Code != "ERR_RATE_LIMITED" {
		t.Errorf("envelope = %+v, want success=false code=ERR_RATE_LIMITED", body)
	}
}
