// Package app is the orchestration facade handed to the presentation
// layer: read-only snapshots of session and recommendation state, plus the
// write actions that mutate them. Every error resolves to a renderable
// classified message; nothing here is fatal.
package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/avetrov/filmweek/internal/client/api"
	"github.com/avetrov/filmweek/internal/client/credential"
	"github.com/avetrov/filmweek/internal/client/providers"
	"github.com/avetrov/filmweek/internal/client/session"
	"github.com/avetrov/filmweek/internal/client/weekly"
	"github.com/avetrov/filmweek/internal/models"
)

// ErrorKind classifies the last display error.
type ErrorKind string

const (
	// KindAuth: the credential was rejected; the session has been torn down.
	KindAuth ErrorKind = "auth"
	// KindSoft: the service understood and rejected the request.
	KindSoft ErrorKind = "soft"
	// KindTransport: no usable response from the service.
	KindTransport ErrorKind = "transport"
	// KindValidation: a client-side precondition failed before any
	// network call.
	KindValidation ErrorKind = "validation"
)

// Error is the classified last-error snapshot for display.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e Error) Error() string { return e.Message }

// App wires the credential store, session controller, fetch orchestrator,
// recommendation gate, and provider aggregator behind one surface.
type App struct {
	log     *zap.Logger
	store   *credential.Store
	api     *api.Client
	session *session.Controller
	gate    *weekly.Gate

	mu              sync.Mutex
	recommendations []models.Recommendation
	weeklyPick      *models.WeeklyRecommendation
	status          *models.WeeklyStatus
	providers       []providers.Provider
	lastErr         *Error
}

// New assembles the client core. The 401 hook is registered here so the
// orchestrator tears the session down before any caller sees the
// classification.
func New(store *credential.Store, client *api.Client, log *zap.Logger) *App {
	a := &App{
		log:     log,
		store:   store,
		api:     client,
		session: session.New(store, client),
		gate:    weekly.NewGate(client),
	}
	client.SetOnAuthFailure(a.teardown)
	return a
}

// teardown clears the session and every piece of state derived from it.
func (a *App) teardown() {
	a.session.Logout()
	a.mu.Lock()
	a.recommendations = nil
	a.weeklyPick = nil
	a.status = nil
	a.providers = nil
	a.mu.Unlock()
	a.log.Info("session invalidated")
}

// --- snapshots ---

// Profile returns the resolved user profile, if a session exists.
func (a *App) Profile() (models.UserProfile, bool) {
	return a.session.Current()
}

// Recommendations returns the last fetched batch.
func (a *App) Recommendations() []models.Recommendation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recommendations
}

// Weekly returns the current weekly pick, or ok=false in the "none yet"
// state.
func (a *App) Weekly() (models.WeeklyRecommendation, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.weeklyPick == nil {
		return models.WeeklyRecommendation{}, false
	}
	return *a.weeklyPick, true
}

// Status returns the last fetched weekly gating status.
func (a *App) Status() (models.WeeklyStatus, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == nil {
		return models.WeeklyStatus{}, false
	}
	return *a.status, true
}

// Providers returns the aggregated streaming providers for the weekly
// pick. An empty slice means streaming information is not available,
// which is distinct from any error state.
func (a *App) Providers() []providers.Provider {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.providers
}

// LastError returns the classified error from the most recent action.
func (a *App) LastError() (Error, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastErr == nil {
		return Error{}, false
	}
	return *a.lastErr, true
}

func (a *App) setErr(kind ErrorKind, msg string) Error {
	e := Error{Kind: kind, Message: msg}
	a.mu.Lock()
	a.lastErr = &e
	a.mu.Unlock()
	return e
}

func (a *App) clearErr() {
	a.mu.Lock()
	a.lastErr = nil
	a.mu.Unlock()
}

// classify maps an orchestrator result onto the display taxonomy.
func classify(res api.Result) ErrorKind {
	switch res.Kind {
	case api.AuthError:
		return KindAuth
	case api.TransportError:
		return KindTransport
	default:
		return KindSoft
	}
}

// --- actions ---

// Restore resolves a previously stored token. ok=false without error
// means no token was saved; an invalid token surfaces as an auth error
// with the store already emptied.
func (a *App) Restore(ctx context.Context) (models.UserProfile, bool, error) {
	profile, ok, err := a.session.Restore(ctx)
	if err != nil {
		e := a.setErr(KindAuth, api.MsgSessionExpired)
		return models.UserProfile{}, false, e
	}
	if ok {
		a.clearErr()
	}
	return profile, ok, nil
}

// Login authenticates and resolves the profile.
func (a *App) Login(ctx context.Context, username, password string) (models.UserProfile, error) {
	profile, err := a.session.Login(ctx, username, password)
	if err != nil {
		return models.UserProfile{}, a.setErr(KindSoft, err.Error())
	}
	a.clearErr()
	a.log.Info("logged in", zap.String("username", profile.Username))
	return profile, nil
}

// Register creates an account and resolves the profile.
func (a *App) Register(ctx context.Context, username, email, password string) (models.UserProfile, error) {
	profile, err := a.session.Register(ctx, username, email, password)
	if err != nil {
		return models.UserProfile{}, a.setErr(KindSoft, err.Error())
	}
	a.clearErr()
	a.log.Info("registered", zap.String("username", profile.Username))
	return profile, nil
}

// Logout clears the credential and all derived state. Calling it twice
// produces the same observable state as calling it once.
func (a *App) Logout() {
	a.teardown()
	a.clearErr()
}

// requireSession gates authorized actions on a completed profile
// resolution — initiation is not enough, since concurrently issued tasks
// may finish out of order.
func (a *App) requireSession() (models.UserProfile, error) {
	if _, ok := a.store.Get(); !ok {
		return models.UserProfile{}, a.setErr(KindValidation, session.ErrNoCredential.Error())
	}
	profile, ok := a.session.Current()
	if !ok {
		return models.UserProfile{}, a.setErr(KindValidation, session.ErrNoCredential.Error())
	}
	return profile, nil
}

// FetchRecommendations fetches the ranked batch for the current user.
func (a *App) FetchRecommendations(ctx context.Context, topN int) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}

	out, res := a.api.Recommendations(ctx, topN)
	if !res.OK() {
		return a.setErr(classify(res), res.Message)
	}

	a.mu.Lock()
	a.recommendations = out.Recommendations
	a.mu.Unlock()
	a.clearErr()

	if out.Message != "" {
		a.log.Info("recommendations note", zap.String("message", out.Message))
	}
	return nil
}

// FetchWeekly fetches the weekly pick, its streaming providers, and an
// always-fresh status. forceNew requests regeneration and should only be
// passed when the displayed status allows it; the service owns the
// behavior otherwise.
func (a *App) FetchWeekly(ctx context.Context, forceNew bool) error {
	profile, err := a.requireSession()
	if err != nil {
		return err
	}

	out := a.gate.Fetch(ctx, profile.ID, forceNew)

	if out.StatusResult.OK() {
		st := out.Status
		a.mu.Lock()
		a.status = &st
		a.mu.Unlock()
		if errors.Is(out.StatusErr, weekly.ErrStatusContract) {
			a.log.Warn("service declared inconsistent weekly status",
				zap.Int("days_until_new", st.DaysUntilNew))
		}
	}

	if !out.WeeklyResult.OK() {
		return a.setErr(classify(out.WeeklyResult), out.WeeklyResult.Message)
	}

	a.mu.Lock()
	a.weeklyPick = out.Recommendation
	a.providers = providers.Aggregate(out.Streaming)
	a.mu.Unlock()
	a.clearErr()
	return nil
}

// UploadRatings posts a Name,Rating CSV for the current user and returns
// the service's ingestion report.
func (a *App) UploadRatings(ctx context.Context, path string) (models.UploadReport, error) {
	profile, err := a.requireSession()
	if err != nil {
		return models.UploadReport{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return models.UploadReport{}, a.setErr(KindValidation, "cannot open "+path)
	}
	defer f.Close()

	report, res := a.api.UploadRatings(ctx, profile.ID, filepath.Base(path), f)
	if !res.OK() {
		return models.UploadReport{}, a.setErr(classify(res), res.Message)
	}
	a.clearErr()
	return report, nil
}
