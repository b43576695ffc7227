package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestOriginListSwap(t *testing.T) {
	l := NewOriginList([]string{"http://localhost:3000"})
	if !l.Allowed("http://localhost:3000") || l.Allowed("https://brainer.example") {
		t.Fatalf("initial list answers wrong")
	}

	l.Set([]string{"https://brainer.example"})
	if l.Allowed("http://localhost:3000") {
		t.Errorf("Allowed(localhost) = true after swap, want false")
	}
	if !l.Allowed("https://brainer.example") {
		t.Errorf("Allowed(brainer.example) = false after swap, want true")
	}

	l.Set([]string{"*"})
	if !l.Allowed("https://anything.example") {
		t.Errorf("wildcard list rejected an origin")
	}
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestCORS(t *testing.T) {
	r := newEngine(CORS(NewOriginList([]string{"https://brainer.example"})))

	tests := []struct {
		origin     string
		wantStatus int
		wantHeader string
	}{
		{"https://brainer.example", http.StatusOK, "https://brainer.example"},
		{"https://evil.example", http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", tt.origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tt.wantStatus {
			t.Errorf("origin %s: status = %d, want %d", tt.origin, w.Code, tt.wantStatus)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
			t.Errorf("origin %s: Access-Control-Allow-Origin = %q, want %q", tt.origin, got, tt.wantHeader)
		}
	}
}

func TestSecureHeaders(t *testing.T) {
	r := newEngine(Secure())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Errorf("HSTS set on a plain http request")
	}
}

func TestRateLimiter(t *testing.T) {
	r := newEngine(RateLimiter(2, time.Hour))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("statuses = %v, want [200 200 429]", codes)
	}

	// 其他IP有独立的配额
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("second client status = %d, want 200", w.Code)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	r := newEngine(RateLimiter(0, time.Minute))
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, w.Code)
		}
	}
}
