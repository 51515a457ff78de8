package cluster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPostJSONRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Addr string }
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(struct {
			ID int `json:"id"`
		}{ID: 3})
	}))
	defer srv.Close()

	var out struct {
		ID int `json:"id"`
	}
	err := PostJSON(context.Background(), srv.URL, struct{ Addr string }{Addr: "x"}, &out)
	if err != nil {
		t.Fatalf("PostJSON() = %v", err)
	}
	if out.ID != 3 {
		t.Fatalf("out.ID = %d, want 3", out.ID)
	}
}

func TestPostJSONErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := PostJSON(context.Background(), srv.URL, nil, nil); err == nil {
		t.Fatal("PostJSON() with a 500 response = nil, want error")
	}
}

func TestPostJSONRetrySucceedsAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(struct {
			ID int `json:"id"`
		}{ID: 5})
	}))
	defer srv.Close()

	var retries []int
	var out struct {
		ID int `json:"id"`
	}
	err := PostJSONRetry(context.Background(), srv.URL, nil, &out, 5, time.Millisecond, func(attempt int, _ error) {
		retries = append(retries, attempt)
	})
	if err != nil {
		t.Fatalf("PostJSONRetry() = %v", err)
	}
	if out.ID != 5 {
		t.Fatalf("out.ID = %d, want 5", out.ID)
	}
	if want := []int{1, 2}; len(retries) != len(want) || retries[0] != want[0] || retries[1] != want[1] {
		t.Fatalf("retries = %v, want %v", retries, want)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("server saw %d calls, want 3", got)
	}
}

func TestPostJSONRetryExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := PostJSONRetry(context.Background(), srv.URL, nil, nil, 3, time.Millisecond, nil)
	if err == nil {
		t.Fatal("PostJSONRetry() with an always-failing server = nil, want error")
	}
}
