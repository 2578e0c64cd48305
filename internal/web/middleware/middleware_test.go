package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAllowSubnet(t *testing.T) {
	subnet, err := ParseSubnet("10.0.0.0/8")
	if err != nil {
		t.Fatalf("ParseSubnet returned error: %v", err)
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		subnet bool
		remote string
		want   int
	}{
		{"no restriction", false, "203.0.113.9:1234", http.StatusNoContent},
		{"inside subnet", true, "10.1.2.3:5555", http.StatusNoContent},
		{"outside subnet", true, "192.168.1.10:5555", http.StatusForbidden},
		{"bare ip", true, "10.9.9.9", http.StatusNoContent},
		{"garbage", true, "not-an-ip", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h http.Handler
			if tt.subnet {
				h = AllowSubnet(subnet)(ok)
			} else {
				h = AllowSubnet(nil)(ok)
			}

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestParseSubnet(t *testing.T) {
	if n, err := ParseSubnet(""); err != nil || n != nil {
		t.Fatalf("expected nil subnet for empty input, got %v, %v", n, err)
	}
	if _, err := ParseSubnet("10.0.0.0/33"); err == nil {
		t.Fatal("expected error for invalid CIDR")
	}
}

func TestLogger_PassesThrough(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rec.Code)
	}
}
