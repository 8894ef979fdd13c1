package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wonny/backtester/pkg/logger"
)

func TestNew(t *testing.T) {
	client := New("http://localhost:5001/", 5*time.Second, logger.Nop())

	if client.baseURL != "http://localhost:5001" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}

	if client.httpClient.Timeout != 5*time.Second {
		t.Errorf("Expected timeout=5s, got %v", client.httpClient.Timeout)
	}

	if client.retryConfig.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries=3, got %d", client.retryConfig.MaxRetries)
	}
}

func TestWithRetry(t *testing.T) {
	client := New("http://x", time.Second, logger.Nop()).WithRetry(5, 2*time.Second)

	if client.retryConfig.MaxRetries != 5 {
		t.Errorf("Expected MaxRetries=5, got %d", client.retryConfig.MaxRetries)
	}

	if client.retryConfig.InitialDelay != 2*time.Second {
		t.Errorf("Expected InitialDelay=2s, got %v", client.retryConfig.InitialDelay)
	}
}

func TestDisableRetry(t *testing.T) {
	client := New("http://x", time.Second, logger.Nop()).DisableRetry()

	if client.retryConfig.Enabled {
		t.Error("Expected retry to be disabled")
	}
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.URL.Path != "/api/dashboard" {
			t.Errorf("Expected /api/dashboard, got %s", r.URL.Path)
		}
		if r.Header.Get("X-Session-ID") != "alice" {
			t.Errorf("Expected session header, got %q", r.Header.Get("X-Session-ID"))
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, logger.Nop()).WithHeader("X-Session-ID", "alice")

	var out map[string]string
	if err := client.GetJSON(context.Background(), "/api/dashboard", &out); err != nil {
		t.Fatalf("GET request failed: %v", err)
	}

	if out["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", out)
	}
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}

		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected Content-Type=application/json, got %s", ct)
		}

		var in map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("Expected JSON body: %v", err)
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":7,"filename":"` + in["filename"].(string) + `"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, logger.Nop())

	var out struct {
		ID       int64  `json:"id"`
		Filename string `json:"filename"`
	}
	err := client.PostJSON(context.Background(), "/api/signal-files", map[string]string{"filename": "a.csv"}, &out)
	if err != nil {
		t.Fatalf("POST request failed: %v", err)
	}

	if out.ID != 7 || out.Filename != "a.csv" {
		t.Errorf("Unexpected response: %+v", out)
	}
}

func TestRetryOnUnavailable(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, logger.Nop()).WithRetry(3, 10*time.Millisecond)

	if err := client.GetJSON(context.Background(), "/", nil); err != nil {
		t.Fatalf("Request failed after retries: %v", err)
	}

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestNoRetryOnInternalError(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"script exited with status 1","kind":"computation_failed"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, logger.Nop()).WithRetry(3, 10*time.Millisecond)

	err := client.PostJSON(context.Background(), "/api/signal-files", map[string]string{}, nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != 500 || statusErr.Kind != "computation_failed" {
		t.Errorf("Unexpected error: %+v", statusErr)
	}
	if statusErr.Message != "script exited with status 1" {
		t.Errorf("Expected server message, got %q", statusErr.Message)
	}

	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("Expected 1 attempt, got %d", got)
	}
}

func TestRetryGivesUp(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limit exceeded"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, logger.Nop()).WithRetry(2, 5*time.Millisecond)

	err := client.GetJSON(context.Background(), "/", nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 StatusError, got %v", err)
	}

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestContextCancelStopsRetry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, time.Second, logger.Nop()).WithRetry(5, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.GetJSON(ctx, "/", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	err := decodeStatusError(http.StatusBadGateway, []byte("upstream down\n"))

	if err.Message != "upstream down" {
		t.Errorf("Expected raw body as message, got %q", err.Message)
	}

	empty := decodeStatusError(http.StatusNotFound, nil)
	if empty.Message != "Not Found" {
		t.Errorf("Expected status text, got %q", empty.Message)
	}
}

func TestIsRetryableStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, false},
		{502, true},
		{503, true},
		{504, true},
	}

	for _, tt := range tests {
		if got := IsRetryableStatus(tt.code); got != tt.want {
			t.Errorf("IsRetryableStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestRetryAfter(t *testing.T) {
	if got := retryAfter("3"); got != 3*time.Second {
		t.Errorf("Expected 3s, got %v", got)
	}
	if got := retryAfter(""); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
	if got := retryAfter("soon"); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
}
