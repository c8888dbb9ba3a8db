package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tubeview/tubeview/internal/auth"
)

func newTestStore(t *testing.T, access, refresh string) *auth.Store {
	t.Helper()
	store := auth.NewStore(t.TempDir())
	if access != "" {
		if err := store.Save(auth.Credentials{AccessToken: access, RefreshToken: refresh}); err != nil {
			t.Fatalf("seed credentials: %v", err)
		}
	}
	return store
}

func writeEnvelope(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"statusCode": status,
		"success":    status >= 200 && status < 300,
		"data":       data,
		"message":    message,
	})
}

func TestNormalizeEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		httpStatus int
		body       string
		wantStatus int
		wantOK     bool
		wantMsg    string
	}{
		{"full shape", 200, `{"statusCode":200,"success":true,"data":{},"message":"ok"}`, 200, true, "ok"},
		{"short shape", 200, `{"success":true,"data":{},"message":"ok"}`, 200, true, "ok"},
		{"explicit failure", 200, `{"success":false,"message":"nope"}`, 200, false, "nope"},
		{"status from body wins", 200, `{"statusCode":201,"success":true}`, 201, true, ""},
		{"no success field infers from status", 404, `{"message":"not found"}`, 404, false, "not found"},
		{"non-envelope body", 502, `<html>bad gateway</html>`, 502, false, ""},
		{"empty body", 204, ``, 204, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := normalizeEnvelope(tt.httpStatus, []byte(tt.body))
			if env.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", env.StatusCode, tt.wantStatus)
			}
			if env.Success != tt.wantOK {
				t.Errorf("success = %v, want %v", env.Success, tt.wantOK)
			}
			if env.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMsg)
			}
		})
	}
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("expected X-Request-Id header")
		}
		writeEnvelope(w, 200, map[string]string{}, "ok")
	}))
	defer server.Close()

	client := NewClient(server.URL, newTestStore(t, "token-1", "refresh-1"))
	if _, err := client.Get(context.Background(), "/videos"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer token-1" {
		t.Errorf("Authorization = %q, want Bearer token-1", gotAuth)
	}
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, 200, map[string]string{}, "ok")
	}))
	defer server.Close()

	client := NewClient(server.URL, newTestStore(t, "", ""))
	if _, err := client.Get(context.Background(), "/healthcheck"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestClient_RefreshOn401AndReplay(t *testing.T) {
	var refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/refresh-token":
			refreshCalls.Add(1)
			var body struct {
				RefreshToken string `json:"refreshToken"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.RefreshToken != "refresh-old" {
				t.Errorf("wrong refresh token sent: %q", body.RefreshToken)
			}
			writeEnvelope(w, 200, map[string]string{
				"accessToken":  "token-new",
				"refreshToken": "refresh-new",
			}, "refreshed")
		case "/videos":
			if r.Header.Get("Authorization") == "Bearer token-new" {
				writeEnvelope(w, 200, []interface{}{}, "ok")
				return
			}
			writeEnvelope(w, 401, nil, "jwt expired")
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	store := newTestStore(t, "token-old", "refresh-old")
	client := NewClient(server.URL, store)

	env, err := client.Get(context.Background(), "/videos")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !env.Success {
		t.Error("replayed request should succeed")
	}
	if n := refreshCalls.Load(); n != 1 {
		t.Errorf("refresh called %d times, want 1", n)
	}

	creds, err := store.Load()
	if err != nil {
		t.Fatalf("credentials missing after refresh: %v", err)
	}
	if creds.AccessToken != "token-new" || creds.RefreshToken != "refresh-new" {
		t.Errorf("rotated pair not stored: %+v", creds)
	}
}

func TestClient_SingleFlightRefresh(t *testing.T) {
	const concurrency = 8

	var refreshCalls, rejected atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/refresh-token":
			refreshCalls.Add(1)
			<-release // hold the refresh so every victim queues behind it
			writeEnvelope(w, 200, map[string]string{
				"accessToken":  "token-new",
				"refreshToken": "refresh-new",
			}, "refreshed")
		default:
			if r.Header.Get("Authorization") == "Bearer token-new" {
				writeEnvelope(w, 200, map[string]string{}, "ok")
				return
			}
			rejected.Add(1)
			writeEnvelope(w, 401, nil, "jwt expired")
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, newTestStore(t, "token-old", "refresh-old"))

	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Get(context.Background(), "/videos")
		}(i)
	}

	// Hold the refresh until every request has taken its 401 and had time to
	// pile onto the refresh gate, then let the single exchange complete.
	for rejected.Load() < concurrency {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("request %d failed: %v", i, err)
		}
	}
	if n := refreshCalls.Load(); n != 1 {
		t.Errorf("refresh called %d times, want exactly 1", n)
	}
}

func TestClient_RefreshFailureClearsCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/refresh-token":
			writeEnvelope(w, 401, nil, "refresh token expired")
		default:
			writeEnvelope(w, 401, nil, "jwt expired")
		}
	}))
	defer server.Close()

	store := newTestStore(t, "token-old", "refresh-old")
	client := NewClient(server.URL, store)

	_, err := client.Get(context.Background(), "/videos")
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if store.Authenticated() {
		t.Error("credentials should be cleared after refresh failure")
	}
}

func TestClient_LoginNotRetriedOn401(t *testing.T) {
	var refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/refresh-token" {
			refreshCalls.Add(1)
		}
		writeEnvelope(w, 401, nil, "invalid credentials")
	}))
	defer server.Close()

	client := NewClient(server.URL, newTestStore(t, "", ""))
	_, err := client.Post(context.Background(), "/users/login", map[string]string{"username": "a", "password": "b"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "invalid credentials" {
		t.Errorf("wrong message: %q", apiErr.Message)
	}
	if refreshCalls.Load() != 0 {
		t.Error("login failure must not trigger a token refresh")
	}
}

func TestClient_SurfacesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 400, nil, "title is required")
	}))
	defer server.Close()

	client := NewClient(server.URL, newTestStore(t, "token", "refresh"))
	_, err := client.Post(context.Background(), "/videos", map[string]string{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != 400 || apiErr.Message != "title is required" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestClient_RateLimitThrottles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 200, map[string]string{}, "ok")
	}))
	defer server.Close()

	// 50 rps with burst 1: the second and third request each wait ~20ms.
	client := NewClient(server.URL, newTestStore(t, "", ""), WithRateLimit(50, 1))

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.Get(context.Background(), "/videos"); err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
	}

	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("3 requests at 50 rps finished in %v, limiter not applied", elapsed)
	}
}

func TestClient_RateLimitRespectsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 200, map[string]string{}, "ok")
	}))
	defer server.Close()

	client := NewClient(server.URL, newTestStore(t, "", ""), WithRateLimit(0.01, 1))

	// Burn the burst token, then a cancelled context must not wait 100s.
	if _, err := client.Get(context.Background(), "/videos"); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := client.Get(ctx, "/videos"); err == nil {
		t.Fatal("expected error when the limiter wait outlives the context")
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL, newTestStore(t, "", ""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Get(ctx, "/videos"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestEnvelope_Decode(t *testing.T) {
	env := Envelope{Data: json.RawMessage(`{"name":"chai"}`)}
	var got struct {
		Name string `json:"name"`
	}
	if err := env.Decode(&got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Name != "chai" {
		t.Errorf("wrong value: %q", got.Name)
	}

	if err := (Envelope{}).Decode(&got); err == nil {
		t.Error("decoding an empty envelope should fail")
	}
}
