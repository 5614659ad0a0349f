package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hoshimi/periscope/internal/model"
)

func TestStatusProbe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k-123" {
			t.Fatalf("expected bearer key attached, got %q", got)
		}
		_, _ = io.WriteString(w, `{"account_connected":true,"profile_name":"Ada"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewWithClient(srv.URL, "k-123", srv.Client())
	env, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !env.AccountConnected || env.ProfileName != "Ada" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestRequestErrorCarriesClassification(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":"E_RATE","message":"slow down"}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewWithClient(srv.URL, "", srv.Client())
	_, err := client.Status(context.Background())
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.Kind != model.ErrRateLimited {
		t.Fatalf("expected rate_limited kind, got %s", reqErr.Kind)
	}
	if reqErr.Message != "slow down" {
		t.Fatalf("expected backend message, got %q", reqErr.Message)
	}
}

func TestUnreachableBackendClassifiesAsDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // reachable URL, refused connection

	client := New(srv.URL, "")
	_, err := client.Status(context.Background())
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.Kind != model.ErrBackendDown {
		t.Fatalf("expected backend_down, got %s", reqErr.Kind)
	}
	if reqErr.StatusCode != 0 {
		t.Fatalf("expected status 0, got %d", reqErr.StatusCode)
	}
}

func TestRefreshDashboardToleratesPartialFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/briefing/latest", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"headline":"quiet day"}`)
	})
	mux.HandleFunc("/api/proposals", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/timeline", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"at":"2026-08-25T08:00:00Z"}]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewWithClient(srv.URL, "", srv.Client())
	dash, failures := client.RefreshDashboard(context.Background())
	if dash.Briefing == nil {
		t.Fatalf("briefing result lost despite independent fetches")
	}
	if dash.Timeline == nil {
		t.Fatalf("timeline result lost despite proposals failure")
	}
	if dash.Proposals != nil {
		t.Fatalf("failed source must leave its field nil")
	}
	if len(failures) != 1 {
		t.Fatalf("expected exactly one failure, got %v", failures)
	}
	var reqErr *RequestError
	if !errors.As(failures["proposals"], &reqErr) || reqErr.Kind != model.ErrServerError {
		t.Fatalf("expected server_error for proposals, got %v", failures["proposals"])
	}
}
