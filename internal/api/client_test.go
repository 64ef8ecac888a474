package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kozaktomas/face-auth/internal/capture"
	"github.com/kozaktomas/face-auth/internal/payload"
	"github.com/kozaktomas/face-auth/internal/validation"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func loginPayload(t *testing.T, email string) *payload.Payload {
	t.Helper()
	pw := "Secret1!x"
	res := validation.NewSchema(validation.DefaultLimits()).Login(validation.LoginInput{Email: email, Password: &pw})
	p, err := payload.Login(res)
	if err != nil {
		t.Fatalf("payload.Login failed: %v", err)
	}
	return p
}

func setupMockServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, "expected multipart", http.StatusBadRequest)
			return
		}
		if r.FormValue("email") == "wrong@x.com" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Invalid credentials"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"acc","refresh_token":"ref"}`))
	})

	mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","image_data"],"msg":"Invalid image data provided","type":"value_error"}]}`))
	})

	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			http.Error(w, "expected JSON", http.StatusBadRequest)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["refreshToken"] != "ref" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Invalid refresh token"}`))
			return
		}
		w.Write([]byte(`{"accessToken":"acc2"}`))
	})

	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Not authenticated"}`))
			return
		}
		w.Write([]byte(`{"id":7,"email":"u@x.com"}`))
	})

	return httptest.NewServer(mux)
}

func TestLogin(t *testing.T) {
	server := setupMockServer(t)
	defer server.Close()

	c, err := New(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := c.Login(context.Background(), loginPayload(t, "u@x.com"))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.AccessToken != "acc" || resp.RefreshToken != "ref" {
		t.Errorf("unexpected tokens %+v", resp)
	}

	_, err = c.Login(context.Background(), loginPayload(t, "wrong@x.com"))
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Message != "Invalid credentials" {
		t.Errorf("unexpected error %+v", apiErr)
	}
	if apiErr.HasViolations() {
		t.Error("401 must not carry field errors")
	}
}

func TestRegister_FieldErrors(t *testing.T) {
	server := setupMockServer(t)
	defer server.Close()

	c, _ := New(server.URL, WithPayloadFormat(payload.FormatJSON))

	s := validation.NewSchema(validation.DefaultLimits())
	res := s.Registration(validation.RegistrationInput{
		Email:           "u@x.com",
		Password:        "Secret1!x",
		ConfirmPassword: "Secret1!x",
		Image:           &capture.File{Name: "image.webp", MIMEType: "image/webp", Data: []byte("x")},
	})
	p, err := payload.Registration(res)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Register(context.Background(), p)
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	v := apiErr.Violations()
	if len(v) != 1 || v[0].Path != "imageData" {
		t.Errorf("unexpected violations %v", v)
	}
}

func TestRefresh_AlwaysJSON(t *testing.T) {
	server := setupMockServer(t)
	defer server.Close()

	c, _ := New(server.URL)
	p, _ := payload.Refresh("ref")

	resp, err := c.Refresh(context.Background(), p)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if resp.AccessToken != "acc2" {
		t.Errorf("expected 'acc2', got %q", resp.AccessToken)
	}
}

func TestNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c, _ := New(server.URL)

	_, err := c.Me(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, ok := AsAPIError(err); ok {
		t.Error("404 must not be an *APIError")
	}
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, _ := New(url, WithReadRetry(0, time.Millisecond))

	_, err := c.Login(context.Background(), loginPayload(t, "u@x.com"))
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestMe_TokenAndCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer acc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":"abc","email":"u@x.com"}`))
	}))
	defer server.Close()

	c, _ := New(server.URL, WithTokenSource(staticToken("acc")))

	for range 3 {
		u, err := c.Me(context.Background())
		if err != nil {
			t.Fatalf("Me failed: %v", err)
		}
		if u.ID != "abc" || u.Email != "u@x.com" {
			t.Errorf("unexpected user %+v", u)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected one request with caching, got %d", hits.Load())
	}

	c.InvalidateMe()
	if _, err := c.Me(context.Background()); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("expected refetch after invalidation, got %d requests", hits.Load())
	}
}

func TestMe_CachedValueIsolated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"abc","email":"u@x.com"}`))
	}))
	defer server.Close()

	c, _ := New(server.URL, WithTokenSource(staticToken("acc")))

	tests := []struct {
		name   string
		mutate func(u *User)
	}{
		{"fetched value", func(u *User) { u.Email = "changed@x.com" }},
		{"cached value", func(u *User) { u.ID = "other" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := c.Me(context.Background())
			if err != nil {
				t.Fatalf("Me failed: %v", err)
			}
			tt.mutate(u)

			again, err := c.Me(context.Background())
			if err != nil {
				t.Fatalf("Me failed: %v", err)
			}
			if again == u {
				t.Error("expected a distinct value per call")
			}
			if again.ID != "abc" || again.Email != "u@x.com" {
				t.Errorf("cached user was mutated: %+v", again)
			}
		})
	}
}

func TestMe_NoTokenNoHeader(t *testing.T) {
	server := setupMockServer(t)
	defer server.Close()

	c, _ := New(server.URL, WithTokenSource(staticToken("")))

	_, err := c.Me(context.Background())
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestMe_NumericID(t *testing.T) {
	server := setupMockServer(t)
	defer server.Close()

	c, _ := New(server.URL, WithTokenSource(staticToken("acc")))
	u, err := c.Me(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "7" {
		t.Errorf("expected ID '7', got %q", u.ID)
	}
}

// flakyTransport fails the first n round trips.
type flakyTransport struct {
	failures atomic.Int32
	next     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if f.failures.Add(-1) >= 0 {
		return nil, errors.New("connection reset")
	}
	return f.next.RoundTrip(r)
}

func TestMe_RetriesNetworkFailures(t *testing.T) {
	server := setupMockServer(t)
	defer server.Close()

	ft := &flakyTransport{next: http.DefaultTransport}
	ft.failures.Store(2)

	c, _ := New(server.URL,
		WithHTTPClient(&http.Client{Transport: ft}),
		WithTokenSource(staticToken("acc")),
		WithReadRetry(3, time.Millisecond),
	)

	if _, err := c.Me(context.Background()); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
}

func TestMe_DoesNotRetryHTTPErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c, _ := New(server.URL, WithReadRetry(3, time.Millisecond))
	if _, err := c.Me(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if hits.Load() != 1 {
		t.Errorf("expected a single request, got %d", hits.Load())
	}
}

func TestMutation_StaleResponseIgnored(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		if r.FormValue("email") == "slow@x.com" {
			close(started)
			<-release
		}
		w.Write([]byte(`{"accessToken":"` + r.FormValue("email") + `"}`))
	}))
	defer server.Close()

	c, _ := New(server.URL)

	var firstErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = c.Login(context.Background(), loginPayload(t, "slow@x.com"))
	}()

	<-started
	resp, err := c.Login(context.Background(), loginPayload(t, "fast@x.com"))
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if resp.AccessToken != "fast@x.com" {
		t.Errorf("unexpected token %q", resp.AccessToken)
	}

	close(release)
	wg.Wait()

	if !errors.Is(firstErr, ErrStale) {
		t.Errorf("expected first response to be stale, got %v", firstErr)
	}
}

func TestMutation_IdenticalRequestsShared(t *testing.T) {
	var hits atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			close(started)
		}
		<-release
		w.Write([]byte(`{"accessToken":"acc"}`))
	}))
	defer server.Close()

	c, _ := New(server.URL)

	var wg sync.WaitGroup
	results := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, results[0] = c.Login(context.Background(), loginPayload(t, "u@x.com"))
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, results[1] = c.Login(context.Background(), loginPayload(t, "u@x.com"))
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if hits.Load() != 1 {
		t.Errorf("expected one request for identical mutations, got %d", hits.Load())
	}
	if results[1] != nil {
		t.Errorf("expected latest caller to succeed, got %v", results[1])
	}
	if !errors.Is(results[0], ErrStale) {
		t.Errorf("expected superseded caller to get ErrStale, got %v", results[0])
	}
}

func TestCaptureResponse(t *testing.T) {
	server := setupMockServer(t)
	defer server.Close()

	dir := t.TempDir()
	c, _ := New(server.URL, WithTokenSource(staticToken("acc")))
	if err := c.SetCaptureDir(dir); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Me(context.Background()); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "me_200_") {
		t.Errorf("unexpected capture files %v", entries)
	}

	data, _ := os.ReadFile(dir + "/" + entries[0].Name())
	if !strings.Contains(string(data), "\n  \"email\"") {
		t.Errorf("expected pretty-printed JSON, got %s", data)
	}
}
