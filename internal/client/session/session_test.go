package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/avetrov/filmweek/internal/client/api"
	"github.com/avetrov/filmweek/internal/client/credential"
)

func newController(t *testing.T, srvURL string) (*Controller, *credential.Store) {
	t.Helper()
	store := credential.NewStore(filepath.Join(t.TempDir(), "token"))
	client := api.NewClient(srvURL, store)
	return New(store, client), store
}

func profileHandler(t *testing.T, wantToken string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login", "/api/auth/register":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"` + wantToken + `","token_type":"bearer"}`))
		case "/api/auth/me":
			if r.Header.Get("Authorization") != "Bearer "+wantToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":7,"username":"ada","email":"ada@example.com"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestResolve_NoCredentialShortCircuits(t *testing.T) {
	// A server that fails the test if reached: resolution without a
	// stored credential must never touch the network.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected network call without credential")
	}))
	defer srv.Close()

	ctrl, _ := newController(t, srv.URL)
	_, err := ctrl.Resolve(context.Background())
	if !errors.Is(err, ErrNoCredential) {
		t.Errorf("err = %v; want ErrNoCredential", err)
	}
}

func TestResolve_Success(t *testing.T) {
	srv := httptest.NewServer(profileHandler(t, "tok-valid"))
	defer srv.Close()

	ctrl, store := newController(t, srv.URL)
	if err := store.Set("tok-valid"); err != nil {
		t.Fatal(err)
	}

	profile, err := ctrl.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if profile.ID != 7 || profile.Username != "ada" {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if got, ok := ctrl.Current(); !ok || got != profile {
		t.Errorf("Current = %+v, %v; want resolved profile", got, ok)
	}
}

func TestResolve_RejectedTokenEmptiesStore(t *testing.T) {
	srv := httptest.NewServer(profileHandler(t, "tok-valid"))
	defer srv.Close()

	ctrl, store := newController(t, srv.URL)
	if err := store.Set("tok-stale"); err != nil {
		t.Fatal(err)
	}

	_, err := ctrl.Resolve(context.Background())
	if !errors.Is(err, ErrAuthInvalid) {
		t.Fatalf("err = %v; want ErrAuthInvalid", err)
	}
	if _, ok := store.Get(); ok {
		t.Error("credential still stored after failed resolution")
	}
	if _, ok := ctrl.Current(); ok {
		t.Error("profile still present after failed resolution")
	}
}

func TestResolve_TransportFailureAlsoInvalidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	ctrl, store := newController(t, srv.URL)
	if err := store.Set("tok"); err != nil {
		t.Fatal(err)
	}

	_, err := ctrl.Resolve(context.Background())
	if !errors.Is(err, ErrAuthInvalid) {
		t.Fatalf("err = %v; want ErrAuthInvalid", err)
	}
	if _, ok := store.Get(); ok {
		t.Error("credential survived an unreachable resolution")
	}
}

func TestLogin_StoresTokenAndResolves(t *testing.T) {
	srv := httptest.NewServer(profileHandler(t, "tok-fresh"))
	defer srv.Close()

	ctrl, store := newController(t, srv.URL)
	profile, err := ctrl.Login(context.Background(), "ada", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if profile.Username != "ada" {
		t.Errorf("profile = %+v", profile)
	}
	if tok, ok := store.Get(); !ok || tok != "tok-fresh" {
		t.Errorf("stored token = %q, %v", tok, ok)
	}
}

func TestLogin_RejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	ctrl, store := newController(t, srv.URL)
	_, err := ctrl.Login(context.Background(), "ada", "wrong")
	if !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("err = %v; want ErrBadCredentials", err)
	}
	if _, ok := store.Get(); ok {
		t.Error("token stored despite rejected login")
	}
}

func TestLogin_SurfacesDomainRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"detail":"Username already registered"}`))
	}))
	defer srv.Close()

	ctrl, _ := newController(t, srv.URL)
	_, err := ctrl.Register(context.Background(), "ada", "ada@example.com", "pw")
	if err == nil || err.Error() != "Username already registered" {
		t.Errorf("err = %v; want service detail verbatim", err)
	}
}

func TestRestore_NoTokenIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected network call without credential")
	}))
	defer srv.Close()

	ctrl, _ := newController(t, srv.URL)
	_, ok, err := ctrl.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if ok {
		t.Error("ok = true without a stored token")
	}
}

func TestRestore_ResolvesSavedToken(t *testing.T) {
	srv := httptest.NewServer(profileHandler(t, "tok-saved"))
	defer srv.Close()

	ctrl, store := newController(t, srv.URL)
	if err := store.Set("tok-saved"); err != nil {
		t.Fatal(err)
	}

	profile, ok, err := ctrl.Restore(context.Background())
	if err != nil || !ok {
		t.Fatalf("Restore = %v, %v", ok, err)
	}
	if profile.Username != "ada" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	srv := httptest.NewServer(profileHandler(t, "tok-valid"))
	defer srv.Close()

	ctrl, store := newController(t, srv.URL)
	if err := store.Set("tok-valid"); err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.Resolve(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctrl.Logout()
	ctrl.Logout()
	if _, ok := ctrl.Current(); ok {
		t.Error("profile survived logout")
	}
	if _, ok := store.Get(); ok {
		t.Error("token survived logout")
	}
}
