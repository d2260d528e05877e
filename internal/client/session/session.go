// Package session owns the current-user identity. It resolves the stored
// credential to a profile or invalidates it, and is the single place that
// tears authentication state down.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/avetrov/filmweek/internal/client/api"
	"github.com/avetrov/filmweek/internal/client/credential"
	"github.com/avetrov/filmweek/internal/models"
)

// ErrAuthInvalid means the credential could not be resolved to a profile.
// By the time it is returned the credential store has been emptied.
var ErrAuthInvalid = errors.New("authentication invalid")

// ErrNoCredential means an authorized action was attempted with no stored
// token. It short-circuits before any network call.
var ErrNoCredential = errors.New("Please login first")

// ErrBadCredentials means a login or registration attempt was rejected.
var ErrBadCredentials = errors.New("Incorrect username or password")

// Controller resolves tokens to profiles. The profile is replaced
// wholesale on every successful resolution and never mutated in place.
type Controller struct {
	store   *credential.Store
	api     *api.Client
	mu      sync.Mutex
	profile *models.UserProfile
}

// New returns a Controller over the given store and API client.
func New(store *credential.Store, client *api.Client) *Controller {
	return &Controller{store: store, api: client}
}

// Current returns the resolved profile, or ok=false when no session exists.
func (c *Controller) Current() (models.UserProfile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil {
		return models.UserProfile{}, false
	}
	return *c.profile, true
}

// Resolve issues the "who am I" request for the stored credential.
// It is idempotent and safe to call repeatedly. Any failure — 401,
// domain rejection, or transport — invalidates the session and returns
// ErrAuthInvalid with the store left empty.
func (c *Controller) Resolve(ctx context.Context) (models.UserProfile, error) {
	if _, ok := c.store.Get(); !ok {
		return models.UserProfile{}, ErrNoCredential
	}

	profile, res := c.api.Me(ctx)
	if !res.OK() {
		c.Logout()
		return models.UserProfile{}, ErrAuthInvalid
	}

	c.mu.Lock()
	c.profile = &profile
	c.mu.Unlock()
	return profile, nil
}

// Restore resolves a previously stored token on startup. It reports
// ok=false without error when no token is saved.
func (c *Controller) Restore(ctx context.Context) (models.UserProfile, bool, error) {
	if _, ok := c.store.Get(); !ok {
		return models.UserProfile{}, false, nil
	}
	profile, err := c.Resolve(ctx)
	if err != nil {
		return models.UserProfile{}, false, err
	}
	return profile, true, nil
}

// Login exchanges credentials for a token, persists it, and resolves the
// profile.
func (c *Controller) Login(ctx context.Context, username, password string) (models.UserProfile, error) {
	tok, res := c.api.Login(ctx, username, password)
	if err := c.acceptToken(tok, res); err != nil {
		return models.UserProfile{}, err
	}
	return c.Resolve(ctx)
}

// Register creates an account, persists its token, and resolves the
// profile.
func (c *Controller) Register(ctx context.Context, username, email, password string) (models.UserProfile, error) {
	tok, res := c.api.Register(ctx, username, email, password)
	if err := c.acceptToken(tok, res); err != nil {
		return models.UserProfile{}, err
	}
	return c.Resolve(ctx)
}

func (c *Controller) acceptToken(tok models.TokenResponse, res api.Result) error {
	switch res.Kind {
	case api.Success:
	case api.AuthError:
		return ErrBadCredentials
	default:
		return errors.New(res.Message)
	}
	if tok.AccessToken == "" {
		return errors.New(api.MsgTryAgain)
	}
	return c.store.Set(tok.AccessToken)
}

// Logout clears the credential store and drops the profile. It is
// idempotent and always safe to call when no session exists.
func (c *Controller) Logout() {
	_ = c.store.Clear()
	c.mu.Lock()
	c.profile = nil
	c.mu.Unlock()
}
