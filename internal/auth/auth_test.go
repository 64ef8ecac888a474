package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/kozaktomas/face-auth/internal/api"
	"github.com/kozaktomas/face-auth/internal/capture"
	"github.com/kozaktomas/face-auth/internal/database/mock"
	"github.com/kozaktomas/face-auth/internal/payload"
	"github.com/kozaktomas/face-auth/internal/session"
	"github.com/kozaktomas/face-auth/internal/validation"
)

const password = "Sup3r$ecret"

// fakeTransport records calls and returns canned responses.
type fakeTransport struct {
	registerResp *api.AuthResponse
	registerErr  error
	loginResp    *api.AuthResponse
	loginErr     error
	refreshResp  *api.AccessTokenResponse
	refreshErr   error
	meResults    []meResult

	calls       []string
	lastPayload *payload.Payload
	invalidated int
}

type meResult struct {
	user *api.User
	err  error
}

func (f *fakeTransport) Register(_ context.Context, p *payload.Payload) (*api.AuthResponse, error) {
	f.calls = append(f.calls, "register")
	f.lastPayload = p
	return f.registerResp, f.registerErr
}

func (f *fakeTransport) Login(_ context.Context, p *payload.Payload) (*api.AuthResponse, error) {
	f.calls = append(f.calls, "login")
	f.lastPayload = p
	return f.loginResp, f.loginErr
}

func (f *fakeTransport) Refresh(_ context.Context, p *payload.Payload) (*api.AccessTokenResponse, error) {
	f.calls = append(f.calls, "refresh")
	f.lastPayload = p
	return f.refreshResp, f.refreshErr
}

func (f *fakeTransport) Me(context.Context) (*api.User, error) {
	f.calls = append(f.calls, "me")
	if len(f.meResults) == 0 {
		return nil, errors.New("unexpected me call")
	}
	r := f.meResults[0]
	f.meResults = f.meResults[1:]
	return r.user, r.err
}

func (f *fakeTransport) InvalidateAll() {
	f.invalidated++
}

func newTestService(t *testing.T, tr *fakeTransport) (*Service, *session.Store, *mock.KVStore) {
	t.Helper()
	backend := mock.NewKVStore()
	store, err := session.NewStore(context.Background(), backend, "")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return NewService(validation.NewSchema(validation.DefaultLimits()), tr, store), store, backend
}

func pngFile() *capture.File {
	return &capture.File{Name: "face.png", MIMEType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n")}
}

func validRegistration() validation.RegistrationInput {
	return validation.RegistrationInput{
		Email:           "alice@example.com",
		Password:        password,
		ConfirmPassword: password,
		Image:           pngFile(),
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestRegister_Success(t *testing.T) {
	tr := &fakeTransport{registerResp: &api.AuthResponse{AccessToken: "acc", RefreshToken: "ref"}}
	svc, store, backend := newTestService(t, tr)

	res, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !res.Accepted() {
		t.Fatalf("expected acceptance, got %v", res.Violations)
	}

	want := session.Credentials{Email: "alice@example.com", AccessToken: "acc", RefreshToken: "ref"}
	if res.Value != want {
		t.Errorf("expected %+v, got %+v", want, res.Value)
	}
	if got, ok := store.Credentials(); !ok || got != want {
		t.Errorf("store holds %+v", got)
	}
	if _, ok := backend.Raw("user-storage"); !ok {
		t.Error("expected credentials to be persisted")
	}
	if tr.invalidated != 1 {
		t.Errorf("expected cache invalidation on sign-in, got %d", tr.invalidated)
	}
	if tr.lastPayload.Image == nil || tr.lastPayload.Fields.Get("confirmPassword") != password {
		t.Errorf("unexpected payload %+v", tr.lastPayload.Fields)
	}
}

func TestRegister_ClientViolationsSkipTransport(t *testing.T) {
	tr := &fakeTransport{}
	svc, store, _ := newTestService(t, tr)

	in := validRegistration()
	in.ConfirmPassword = "different"
	in.Image = nil

	res, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.Accepted() {
		t.Fatal("expected rejection")
	}
	if len(res.Messages("confirmPassword")) != 1 || len(res.Messages("imageData")) != 1 {
		t.Errorf("unexpected violations %+v", res.Violations)
	}
	if len(tr.calls) != 0 {
		t.Errorf("transport must not be called, got %v", tr.calls)
	}
	if _, ok := store.Credentials(); ok {
		t.Error("store must stay empty")
	}
}

func TestRegister_ServerViolations(t *testing.T) {
	tr := &fakeTransport{registerErr: &api.APIError{
		Status: http.StatusUnprocessableEntity,
		Fields: []api.FieldError{{Loc: []any{"body", "image_data"}, Msg: "No face detected"}},
	}}
	svc, store, _ := newTestService(t, tr)

	res, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("expected violations, not an error: %v", err)
	}
	if msgs := res.Messages("imageData"); len(msgs) != 1 || msgs[0] != "No face detected" {
		t.Errorf("unexpected violations %+v", res.Violations)
	}
	if _, ok := store.Credentials(); ok {
		t.Error("store must stay empty")
	}
}

func TestLogin_TransportErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unauthorized", &api.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}, nil},
		{"not found", api.ErrNotFound, api.ErrNotFound},
		{"network", api.ErrNetwork, api.ErrNetwork},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := &fakeTransport{loginErr: tc.err}
			svc, store, _ := newTestService(t, tr)

			pw := password
			_, err := svc.Login(context.Background(), validation.LoginInput{Email: "alice@example.com", Password: &pw})
			if err == nil {
				t.Fatal("expected an error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
			if _, ok := store.Credentials(); ok {
				t.Error("store must stay empty")
			}
		})
	}
}

func TestLogin_FaceOnly(t *testing.T) {
	tr := &fakeTransport{loginResp: &api.AuthResponse{AccessToken: "acc"}}
	svc, _, _ := newTestService(t, tr)

	res, err := svc.Login(context.Background(), validation.LoginInput{Email: "alice@example.com", Image: pngFile()})
	if err != nil || !res.Accepted() {
		t.Fatalf("Login failed: %v %v", err, res.Violations)
	}
	if _, ok := tr.lastPayload.Fields["password"]; ok {
		t.Error("absent password must not be sent")
	}
	if tr.lastPayload.Image == nil {
		t.Error("expected image in payload")
	}
}

func TestLogin_MissingAccessToken(t *testing.T) {
	tr := &fakeTransport{loginResp: &api.AuthResponse{}}
	svc, store, _ := newTestService(t, tr)

	pw := password
	if _, err := svc.Login(context.Background(), validation.LoginInput{Email: "alice@example.com", Password: &pw}); err == nil {
		t.Fatal("expected an error for an empty token response")
	}
	if _, ok := store.Credentials(); ok {
		t.Error("store must stay empty")
	}
}

func TestLogin_PersistFailureLeavesSessionEmpty(t *testing.T) {
	tr := &fakeTransport{loginResp: &api.AuthResponse{AccessToken: "acc"}}
	svc, store, backend := newTestService(t, tr)
	backend.SaveError = errors.New("disk full")

	pw := password
	if _, err := svc.Login(context.Background(), validation.LoginInput{Email: "alice@example.com", Password: &pw}); err == nil {
		t.Fatal("expected persist error")
	}
	if _, ok := store.Credentials(); ok {
		t.Error("store must stay empty")
	}
}

func TestLogout(t *testing.T) {
	tr := &fakeTransport{loginResp: &api.AuthResponse{AccessToken: "acc"}}
	svc, store, backend := newTestService(t, tr)

	pw := password
	if _, err := svc.Login(context.Background(), validation.LoginInput{Email: "alice@example.com", Password: &pw}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if _, ok := store.Credentials(); ok {
		t.Error("expected empty session")
	}
	if _, ok := backend.Raw("user-storage"); ok {
		t.Error("expected persisted state to be removed")
	}
	if tr.invalidated != 2 {
		t.Errorf("expected 2 invalidations, got %d", tr.invalidated)
	}
}

func TestRefresh(t *testing.T) {
	t.Run("not signed in", func(t *testing.T) {
		svc, _, _ := newTestService(t, &fakeTransport{})
		if _, err := svc.Refresh(context.Background()); !errors.Is(err, ErrNotSignedIn) {
			t.Errorf("expected ErrNotSignedIn, got %v", err)
		}
	})

	t.Run("replaces access token", func(t *testing.T) {
		tr := &fakeTransport{refreshResp: &api.AccessTokenResponse{AccessToken: "new"}}
		svc, store, _ := newTestService(t, tr)
		store.Set(context.Background(), session.Credentials{Email: "a@b.co", AccessToken: "old", RefreshToken: "ref"})

		creds, err := svc.Refresh(context.Background())
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if creds.AccessToken != "new" || creds.RefreshToken != "ref" {
			t.Errorf("unexpected credentials %+v", creds)
		}
		if store.AccessToken() != "new" {
			t.Errorf("store not updated: %q", store.AccessToken())
		}
		if tr.lastPayload.Fields.Get("refreshToken") != "ref" {
			t.Errorf("unexpected refresh payload %v", tr.lastPayload.Fields)
		}
	})

	t.Run("empty token keeps the old one", func(t *testing.T) {
		tr := &fakeTransport{refreshResp: &api.AccessTokenResponse{}}
		svc, store, backend := newTestService(t, tr)
		store.Set(context.Background(), session.Credentials{Email: "a@b.co", AccessToken: "old", RefreshToken: "ref"})

		if _, err := svc.Refresh(context.Background()); err == nil {
			t.Fatal("expected an error for an empty token response")
		}
		if store.AccessToken() != "old" {
			t.Errorf("expected stored token to stay 'old', got %q", store.AccessToken())
		}
		raw, _ := backend.Raw("user-storage")
		if !strings.Contains(string(raw), "accessToken: old") {
			t.Errorf("persisted state changed:\n%s", raw)
		}
		if tr.invalidated != 0 {
			t.Errorf("expected no cache invalidation, got %d", tr.invalidated)
		}
	})
}

func TestMe_RefreshesExpiredToken(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := &fakeTransport{
		refreshResp: &api.AccessTokenResponse{AccessToken: "fresh"},
		meResults:   []meResult{{user: &api.User{ID: "1", Email: "a@b.co"}}},
	}
	svc, store, _ := newTestService(t, tr)
	svc.now = func() time.Time { return now }
	store.Set(context.Background(), session.Credentials{
		Email:        "a@b.co",
		AccessToken:  signedToken(t, now.Add(-time.Minute)),
		RefreshToken: "ref",
	})

	user, err := svc.Me(context.Background())
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if user.ID != "1" {
		t.Errorf("unexpected user %+v", user)
	}
	if len(tr.calls) != 2 || tr.calls[0] != "refresh" || tr.calls[1] != "me" {
		t.Errorf("expected refresh then me, got %v", tr.calls)
	}
}

func TestMe_RetriesOnceAfterUnauthorized(t *testing.T) {
	unauthorized := &api.APIError{Status: http.StatusUnauthorized, Message: "Invalid or expired token"}
	tr := &fakeTransport{
		refreshResp: &api.AccessTokenResponse{AccessToken: "fresh"},
		meResults: []meResult{
			{err: unauthorized},
			{err: unauthorized},
		},
	}
	svc, store, _ := newTestService(t, tr)
	store.Set(context.Background(), session.Credentials{Email: "a@b.co", AccessToken: "opaque", RefreshToken: "ref"})

	_, err := svc.Me(context.Background())
	if apiErr, ok := api.AsAPIError(err); !ok || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 after one retry, got %v", err)
	}
	want := []string{"me", "refresh", "me"}
	if len(tr.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, tr.calls)
	}
	for i := range want {
		if tr.calls[i] != want[i] {
			t.Errorf("call %d: expected %s, got %s", i, want[i], tr.calls[i])
		}
	}
}

func TestMe_NotSignedIn(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeTransport{})
	if _, err := svc.Me(context.Background()); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("expected ErrNotSignedIn, got %v", err)
	}
}
