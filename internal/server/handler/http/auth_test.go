package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/avetrov/filmweek/internal/models"
	"github.com/avetrov/filmweek/internal/service"
)

// mockAuthService implements AuthService and TokenVerifier with
// overridable functions.
type mockAuthService struct {
	register func(ctx context.Context, username, email, password string) (string, error)
	login    func(ctx context.Context, username, password string) (string, error)
	profile  func(ctx context.Context, userID int) (models.UserProfile, error)
	verify   func(token string) (int, error)
}

func (m *mockAuthService) Register(ctx context.Context, username, email, password string) (string, error) {
	return m.register(ctx, username, email, password)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (string, error) {
	return m.login(ctx, username, password)
}

func (m *mockAuthService) Profile(ctx context.Context, userID int) (models.UserProfile, error) {
	return m.profile(ctx, userID)
}

func (m *mockAuthService) Verify(token string) (int, error) {
	return m.verify(token)
}

func newTestRouter(auth *mockAuthService, recommend *mockRecommendService, ingest *mockIngestService) http.Handler {
	return NewRouter(
		&AuthHandler{AuthService: auth},
		&RecommendHandler{RecommendService: recommend},
		&RatingsHandler{IngestService: ingest},
		auth,
		zap.NewNop(),
	)
}

func TestRegister(t *testing.T) {
	auth := &mockAuthService{
		register: func(ctx context.Context, username, email, password string) (string, error) {
			if username != "ada" || email != "ada@example.com" || password != "pw" {
				t.Errorf("register got %q %q %q", username, email, password)
			}
			return "tok-new", nil
		},
	}
	router := newTestRouter(auth, &mockRecommendService{}, &mockIngestService{})

	body := `{"username":"ada","email":"ada@example.com","password":"pw"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var tok models.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tok); err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "tok-new" || tok.TokenType != "bearer" {
		t.Errorf("token = %+v", tok)
	}
}

func TestRegister_TakenUsername(t *testing.T) {
	auth := &mockAuthService{
		register: func(ctx context.Context, username, email, password string) (string, error) {
			return "", service.ErrUserExists
		},
	}
	router := newTestRouter(auth, &mockRecommendService{}, &mockIngestService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"username":"ada","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d; want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Username already registered") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRegister_MissingFields(t *testing.T) {
	router := newTestRouter(&mockAuthService{}, &mockRecommendService{}, &mockIngestService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"username":"ada"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", rec.Code)
	}
}

func TestRegister_WrongContentType(t *testing.T) {
	router := newTestRouter(&mockAuthService{}, &mockRecommendService{}, &mockIngestService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("username=ada"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d; want 415", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	auth := &mockAuthService{
		login: func(ctx context.Context, username, password string) (string, error) {
			return "tok-fresh", nil
		},
	}
	router := newTestRouter(auth, &mockRecommendService{}, &mockIngestService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"ada","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "tok-fresh") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	auth := &mockAuthService{
		login: func(ctx context.Context, username, password string) (string, error) {
			return "", service.ErrInvalidCredentials
		},
	}
	router := newTestRouter(auth, &mockRecommendService{}, &mockIngestService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"ada","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Incorrect username or password") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestMe(t *testing.T) {
	auth := &mockAuthService{
		verify: func(token string) (int, error) {
			if token != "tok-valid" {
				return 0, errors.New("bad token")
			}
			return 7, nil
		},
		profile: func(ctx context.Context, userID int) (models.UserProfile, error) {
			if userID != 7 {
				t.Errorf("profile requested for %d", userID)
			}
			return models.UserProfile{ID: 7, Username: "ada", Email: "ada@example.com"}, nil
		},
	}
	router := newTestRouter(auth, &mockRecommendService{}, &mockIngestService{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer tok-valid")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var profile models.UserProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatal(err)
	}
	if profile.Username != "ada" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestMe_NoToken(t *testing.T) {
	router := newTestRouter(&mockAuthService{}, &mockRecommendService{}, &mockIngestService{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", rec.Code)
	}
}
