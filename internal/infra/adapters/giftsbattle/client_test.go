//go:build !integration

package giftsbattle

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-promo-activator/internal/config"
	"telegram-promo-activator/internal/domain"
)

func newTestClient(t *testing.T, baseURL string, timeout time.Duration) *Client {
	t.Helper()
	logger := zerolog.New(io.Discard)
	c, err := NewClient(&config.GiftsBattleConfig{BaseURL: baseURL, Timeout: timeout}, &logger)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestFetchProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("parses balance and username on 200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/user" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
				t.Errorf("unexpected auth header %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"telegram_username":"alice","sum":150}`))
		}))
		defer srv.Close()

		p, err := newTestClient(t, srv.URL, time.Second).FetchProfile(ctx, "tok-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.Username != "alice" || p.Balance != 150 {
			t.Errorf("unexpected profile %+v", p)
		}
	})

	t.Run("maps non-200 to ErrProfileUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL, time.Second).FetchProfile(ctx, "bad")
		if !errors.Is(err, domain.ErrProfileUnavailable) {
			t.Fatalf("expected ErrProfileUnavailable, got %v", err)
		}
	})

	t.Run("maps timeout to ErrProfileUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL, 20*time.Millisecond).FetchProfile(ctx, "tok")
		if !errors.Is(err, domain.ErrProfileUnavailable) {
			t.Fatalf("expected ErrProfileUnavailable, got %v", err)
		}
	})
}

func TestActivate(t *testing.T) {
	ctx := context.Background()

	t.Run("200 with sum is a success carrying stars", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/promo/activate/" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"code_data":"BONUS50"}` {
				t.Errorf("unexpected body %s", body)
			}
			_, _ = w.Write([]byte(`{"sum":50}`))
		}))
		defer srv.Close()

		res, err := newTestClient(t, srv.URL, time.Second).Activate(ctx, "tok", "BONUS50")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !res.Success || res.StatusCode != http.StatusOK || res.Stars != 50 {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("non-200 is a failed result with the status preserved", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		res, err := newTestClient(t, srv.URL, time.Second).Activate(ctx, "tok", "USED")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Success || res.StatusCode != http.StatusBadRequest || res.Stars != 0 {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("transport fault surfaces as an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL, 20*time.Millisecond).Activate(ctx, "tok", "SLOW")
		if err == nil {
			t.Fatal("expected an error for a timed-out call")
		}
	})

	t.Run("200 with malformed body stays a success with zero stars", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not-json`))
		}))
		defer srv.Close()

		res, err := newTestClient(t, srv.URL, time.Second).Activate(ctx, "tok", "CODE")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !res.Success || res.Stars != 0 {
			t.Errorf("unexpected result %+v", res)
		}
	})
}
