package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/attest/pkg/middleware"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestApplyOrder(t *testing.T) {
	var order []string
	mw := middleware.New()

	for _, name := range []string{"first", "second"} {
		mw.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}

	handler := mw.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "first,second,handler" {
		t.Errorf("order: got %v, want [first second handler]", order)
	}
}

func TestCORS(t *testing.T) {
	enabled := &middleware.CORSConfig{
		Enabled:          true,
		Origins:          []string{"http://practice.local"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}

	tests := []struct {
		name        string
		cfg         *middleware.CORSConfig
		method      string
		origin      string
		preflight   bool
		wantOrigin  string
		wantStatus  int
		wantHandler bool
	}{
		{"disabled", &middleware.CORSConfig{}, "GET", "http://practice.local", false, "", 200, true},
		{"allowed origin", enabled, "GET", "http://practice.local", false, "http://practice.local", 200, true},
		{"denied origin", enabled, "GET", "http://elsewhere.local", false, "", 200, true},
		{"preflight", enabled, "OPTIONS", "http://practice.local", true, "http://practice.local", 204, false},
		{"denied preflight", enabled, "OPTIONS", "http://elsewhere.local", true, "", 200, true},
		{"plain options", enabled, "OPTIONS", "http://practice.local", false, "http://practice.local", 200, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			handler := middleware.CORS(tt.cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				ok(w, r)
			}))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin: got %q, want %q", got, tt.wantOrigin)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if called != tt.wantHandler {
				t.Errorf("handler called: got %v, want %v", called, tt.wantHandler)
			}
			if tt.wantOrigin != "" {
				if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
					t.Errorf("allow-credentials: got %q", got)
				}
			}
			if tt.preflight && tt.wantOrigin != "" {
				if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
					t.Errorf("max-age: got %q", got)
				}
				if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
					t.Errorf("allow-methods: got %q", got)
				}
			}
		})
	}
}

func TestStackLen(t *testing.T) {
	s := middleware.New(middleware.CORS(&middleware.CORSConfig{}))
	s.Use(middleware.Logger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/sign/unknown", nil))

	out := buf.String()
	for _, want := range []string{"status=404", "uri=/sign/unknown", "method=GET"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestLoggerDefaultsToOK(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if !strings.Contains(buf.String(), "status=200") {
		t.Errorf("log output missing status=200: %s", buf.String())
	}
}

func TestRecover(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := middleware.Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/sign/x", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
}

func TestCORSConfigFinalize(t *testing.T) {
	t.Setenv("TEST_CORS_ENABLED", "true")
	t.Setenv("TEST_CORS_ORIGINS", "http://a.local, ,http://b.local")

	cfg := middleware.CORSConfig{}
	err := cfg.Finalize(&middleware.CORSEnv{
		Enabled: "TEST_CORS_ENABLED",
		Origins: "TEST_CORS_ORIGINS",
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if !cfg.Enabled {
		t.Error("enabled should be true")
	}
	if strings.Join(cfg.Origins, "|") != "http://a.local|http://b.local" {
		t.Errorf("origins: got %v", cfg.Origins)
	}
	if len(cfg.AllowedMethods) != 4 {
		t.Errorf("allowed_methods: got %v", cfg.AllowedMethods)
	}
	if cfg.MaxAge != 3600 {
		t.Errorf("max_age: got %d, want 3600", cfg.MaxAge)
	}
}

func TestCORSConfigRejectsBadOrigins(t *testing.T) {
	for _, origin := range []string{"*", "practice.local", "https://practice.local/app", "ftp://files.local"} {
		cfg := middleware.CORSConfig{Enabled: true, Origins: []string{origin}}
		if err := cfg.Finalize(nil); err == nil {
			t.Errorf("Finalize() with origin %q: want error", origin)
		}
	}
}

func TestCORSConfigMerge(t *testing.T) {
	base := middleware.CORSConfig{Origins: []string{"http://base.local"}, MaxAge: 3600}
	base.Merge(&middleware.CORSConfig{Enabled: true, MaxAge: 60})

	if !base.Enabled {
		t.Error("enabled should follow overlay")
	}
	if len(base.Origins) != 1 || base.Origins[0] != "http://base.local" {
		t.Errorf("origins: got %v", base.Origins)
	}
	if base.MaxAge != 60 {
		t.Errorf("max_age: got %d, want 60", base.MaxAge)
	}
}
