package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/brevio/internal/app"
	"github.com/ternarybob/brevio/internal/common"
)

func newTestServer(bearerToken string) *Server {
	cfg := common.NewDefaultConfig()
	cfg.Auth.BearerToken = bearerToken
	return &Server{
		app: &app.App{
			Config: cfg,
			Logger: arbor.NewLogger(),
		},
	}
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func TestRequireBearerToken_ValidToken(t *testing.T) {
	s := newTestServer("secret-token")
	handler := s.requireBearerToken(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/summarize", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for valid token, got %d", rec.Code)
	}
}

func TestRequireBearerToken_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong token", "Bearer wrong-token"},
		{"missing bearer prefix", "secret-token"},
		{"wrong scheme", "Basic secret-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer("secret-token")
			handler := s.requireBearerToken(okHandler)

			req := httptest.NewRequest(http.MethodPost, "/api/summarize", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Errorf("Expected 403, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected JSON error response, got content type %q", ct)
			}
		})
	}
}

func TestRequireBearerToken_DisabledWhenUnset(t *testing.T) {
	s := newTestServer("")
	handler := s.requireBearerToken(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/summarize", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected pass-through when no token configured, got %d", rec.Code)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	s := newTestServer("")
	handler := s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Preflight request should not reach the next handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/summarize", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for preflight, got %d", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Expected wildcard CORS origin, got %q", origin)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	s := newTestServer("")
	handler := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler blew up")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 after panic, got %d", rec.Code)
	}
}
