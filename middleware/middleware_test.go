package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"merkez/api/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		origin     string
		method     string
		wantOrigin string
		wantCreds  string
		wantStatus int
	}{
		{"wildcard", "", http.MethodGet, "*", "", http.StatusOK},
		{"explicit star", "*", http.MethodGet, "*", "", http.StatusOK},
		{"site origin", "https://merkez.web.tr", http.MethodGet, "https://merkez.web.tr", "true", http.StatusOK},
		{"preflight", "https://merkez.web.tr", http.MethodOptions, "https://merkez.web.tr", "true", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORSMiddleware(tt.origin))
			r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
			r.OPTIONS("/x", func(c *gin.Context) { t.Error("preflight reached handler") })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, "/x", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCreds {
				t.Errorf("Allow-Credentials = %q, want %q", got, tt.wantCreds)
			}
		})
	}
}

func TestRequestIDReusesUpstream(t *testing.T) {
	var seen string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		seen = logging.RequestIDFromContext(c.Request.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "upstream-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if seen != "upstream-1" || w.Header().Get(RequestIDHeader) != "upstream-1" {
		t.Errorf("context id %q, header %q", seen, w.Header().Get(RequestIDHeader))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if id := w.Header().Get(RequestIDHeader); id == "" || id == "upstream-1" {
		t.Errorf("generated id = %q", id)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "info", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{}) })

	r := gin.New()
	r.Use(RequestID(), RequestLogger())
	r.GET("/api/center/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	req := httptest.NewRequest(http.MethodGet, "/api/center/7", nil)
	req.Header.Set(RequestIDHeader, "log-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{`"route":"/api/center/:id"`, `"status":418`, `"request_id":"log-1"`, `"path":"/api/center/7"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %s: %s", want, out)
		}
	}
}
