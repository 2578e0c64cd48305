package discord

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eduvance/portal/internal/apperror"
	"github.com/eduvance/portal/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(config.DiscordConfig{BotToken: "token", GuildID: "123", CacheTTL: 5 * time.Minute})
	c.SetBaseURL(srv.URL)
	return c, &calls
}

func TestMemberCount_CachesWithinTTL(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/guilds/123" || r.URL.Query().Get("with_counts") != "true" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		if got := r.Header.Get("Authorization"); got != "Bot token" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"123","name":"Eduvance","approximate_member_count":1234}`))
	})

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for range 3 {
		count, err := c.MemberCount(context.Background())
		if err != nil {
			t.Fatalf("MemberCount returned error: %v", err)
		}
		if count != 1234 {
			t.Fatalf("expected 1234, got %d", count)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected a single upstream call, got %d", n)
	}

	now = now.Add(6 * time.Minute)
	if _, err := c.MemberCount(context.Background()); err != nil {
		t.Fatalf("MemberCount returned error: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected a refresh after the TTL, got %d calls", n)
	}
}

func TestMemberCount_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   apperror.Kind
	}{
		{"unauthorized", http.StatusUnauthorized, apperror.KindUnauthorized},
		{"forbidden", http.StatusForbidden, apperror.KindUnauthorized},
		{"server error", http.StatusInternalServerError, apperror.KindUpstream},
		{"rate limited", http.StatusTooManyRequests, apperror.KindUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message":"nope"}`))
			})

			_, err := c.MemberCount(context.Background())
			if !apperror.Is(err, tt.kind) {
				t.Fatalf("expected kind %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestMemberCount_InvalidBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	if _, err := c.MemberCount(context.Background()); !apperror.Is(err, apperror.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestMemberCount_NotConfigured(t *testing.T) {
	c := NewClient(config.DiscordConfig{CacheTTL: time.Minute})

	_, err := c.MemberCount(context.Background())
	if !apperror.Is(err, apperror.KindUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestRefresher_StartStop(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"approximate_member_count":7}`))
	})

	r := NewRefresher(c, "@every 1h")
	if err := r.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	r.Stop()

	if calls.Load() == 0 {
		t.Fatal("expected the refresher to warm the cache on start")
	}
	// Stopping twice is a no-op
	r.Stop()
}

func TestRefresher_InvalidSchedule(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	r := NewRefresher(c, "not a schedule")
	if err := r.Start(); err == nil {
		t.Fatal("expected an error for an invalid schedule")
	}
}
