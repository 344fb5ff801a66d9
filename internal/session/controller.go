package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"qms-console/internal/api"
	"qms-console/internal/observability"
)

const expiredDebounceWindow = 2 * time.Second

const (
	RouteLogin          = "login"
	RouteChangePassword = "change-password"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// AuthAPI is the slice of the API client the controller drives.
type AuthAPI interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Options inject the navigation side effects so the controller stays testable.
type Options struct {
	Navigate     func(route string)
	CurrentRoute func() string
	Now          func() time.Time
}

// Controller owns the session lifecycle: login, logout, password change,
// profile refresh and expiry. It is the only writer of the Store.
type Controller struct {
	mu           sync.Mutex
	store        *Store
	client       AuthAPI
	logger       *observability.Logger
	navigate     func(route string)
	currentRoute func() string
	now          func() time.Time

	phase        Phase
	accessToken  string
	refreshToken string
	user         *UserProfile
	lastExpired  time.Time
}

func NewController(store *Store, logger *observability.Logger, opts Options) *Controller {
	if logger == nil {
		logger = observability.NewSilentLogger()
	}
	c := &Controller{
		store:        store,
		logger:       logger,
		navigate:     opts.Navigate,
		currentRoute: opts.CurrentRoute,
		now:          opts.Now,
	}
	if c.navigate == nil {
		c.navigate = func(string) {}
	}
	if c.currentRoute == nil {
		c.currentRoute = func() string { return "" }
	}
	if c.now == nil {
		c.now = func() time.Time { return time.Now().UTC() }
	}

	state := store.Read()
	c.accessToken = state.AccessToken
	c.refreshToken = state.RefreshToken
	c.user = state.User
	if c.accessToken != "" && c.user != nil {
		c.phase = PhaseAuthenticated
	}
	return c
}

// SetClient binds the API client after both sides exist. The client got its
// hooks first, so there is no initialization cycle.
func (c *Controller) SetClient(client AuthAPI) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.client = client
}

// Hooks exposes the closures the API client is constructed with.
func (c *Controller) Hooks() api.Hooks {
	return api.Hooks{
		GetAccessToken:   c.AccessToken,
		GetRefreshToken:  c.RefreshToken,
		SetTokens:        c.StoreTokens,
		OnSessionExpired: c.SessionExpired,
	}
}

func (c *Controller) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	c.mu.Lock()
	c.phase = PhaseAuthenticating
	c.mu.Unlock()

	var result LoginResult
	payload := map[string]string{"username": username, "password": password}
	if err := c.client.Post(ctx, "/auth/login", payload, &result); err != nil {
		c.mu.Lock()
		c.phase = PhaseAnonymous
		c.mu.Unlock()
		return nil, err
	}

	if result.User != nil && result.MustChangePassword {
		result.User.MustChangePassword = true
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.refreshToken = result.RefreshToken
	if result.User != nil {
		c.user = result.User
	}
	c.phase = PhaseAuthenticated
	c.mu.Unlock()

	if err := c.store.Write(State{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	}); err != nil {
		c.logger.Warn("session_persist_failed", map[string]any{"error": err.Error()})
	}

	c.logger.Info("login_succeeded", map[string]any{"username": username})
	return &result, nil
}

// Logout is always locally effective: the backend call is best effort.
func (c *Controller) Logout(ctx context.Context) {
	refreshToken := c.RefreshToken()
	if refreshToken != "" {
		payload := map[string]string{"refreshToken": refreshToken}
		if err := c.client.Post(ctx, "/auth/logout", payload, nil); err != nil {
			c.logger.Warn("logout_backend_failed", map[string]any{"error": err.Error()})
		}
	}

	c.mu.Lock()
	c.clearLocked()
	c.phase = PhaseAnonymous
	c.mu.Unlock()

	c.logger.Info("logout", nil)
	c.navigate(RouteLogin)
}

func (c *Controller) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	payload := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	if err := c.client.Post(ctx, "/auth/change-password", payload, nil); err != nil {
		return err
	}

	// The backend accepted the change, so the flag is stale; no round trip.
	c.mu.Lock()
	var user *UserProfile
	if c.user != nil {
		c.user.MustChangePassword = false
		user = c.user
	}
	accessToken, refreshToken := c.accessToken, c.refreshToken
	c.mu.Unlock()

	if user != nil {
		if err := c.store.Write(State{AccessToken: accessToken, RefreshToken: refreshToken, User: user}); err != nil {
			c.logger.Warn("session_persist_failed", map[string]any{"error": err.Error()})
		}
	}
	return nil
}

// RefreshProfile fetches /auth/profile and merges it into the cached user.
// A session whose profile cannot be read is not trusted and is cleared.
func (c *Controller) RefreshProfile(ctx context.Context) error {
	if c.AccessToken() == "" {
		return nil
	}

	var fetched UserProfile
	if err := c.client.Get(ctx, "/auth/profile", &fetched); err != nil {
		c.logger.Warn("profile_fetch_failed", map[string]any{"error": err.Error()})
		c.expire()
		return err
	}

	c.mu.Lock()
	if len(fetched.Roles) == 0 && c.user != nil {
		fetched.Roles = c.user.Roles
	}
	if fetched.Roles == nil {
		fetched.Roles = []string{}
	}
	c.user = &fetched
	c.phase = PhaseAuthenticated
	accessToken, refreshToken := c.accessToken, c.refreshToken
	c.mu.Unlock()

	if err := c.store.Write(State{AccessToken: accessToken, RefreshToken: refreshToken, User: &fetched}); err != nil {
		c.logger.Warn("session_persist_failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// EnsureProfile covers the restored-tokens-without-profile startup case.
func (c *Controller) EnsureProfile(ctx context.Context) error {
	c.mu.Lock()
	needed := c.accessToken != "" && c.user == nil
	c.mu.Unlock()
	if !needed {
		return nil
	}
	return c.RefreshProfile(ctx)
}

// SessionExpired clears the session and redirects to the login screen.
// Many requests can fail 401 at once, so the side effect is debounced to a
// single occurrence per window.
func (c *Controller) SessionExpired() {
	c.mu.Lock()
	now := c.now()
	if now.Sub(c.lastExpired) < expiredDebounceWindow {
		c.mu.Unlock()
		return
	}
	c.lastExpired = now
	c.clearLocked()
	c.phase = PhaseExpired
	c.mu.Unlock()

	c.logger.Info("session_expired", nil)
	route := c.currentRoute()
	if route != RouteLogin && route != RouteChangePassword {
		c.navigate(RouteLogin)
	}
}

// StoreTokens persists rotated tokens. The cached profile is untouched.
func (c *Controller) StoreTokens(tokens api.Tokens) {
	c.mu.Lock()
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	c.mu.Unlock()

	if err := c.store.Write(State{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}); err != nil {
		c.logger.Warn("session_persist_failed", map[string]any{"error": err.Error()})
	}
}

func (c *Controller) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken != "" && c.user != nil
}

// HasAnyRole gates UI affordances only; the server stays authoritative.
func (c *Controller) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return false
	}
	for _, wanted := range roles {
		for _, held := range c.user.Roles {
			if held == wanted {
				return true
			}
		}
	}
	return false
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

func (c *Controller) RefreshToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshToken
}

func (c *Controller) User() *UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	copied := *c.user
	copied.Roles = append([]string(nil), c.user.Roles...)
	return &copied
}

// TokenExpiry reports the access token's exp claim without verifying the
// signature; only the server can vouch for the token anyway.
func (c *Controller) TokenExpiry() (time.Time, bool) {
	token := c.AccessToken()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}
	return expiry.Time, true
}

func (c *Controller) clearLocked() {
	if err := c.store.Clear(); err != nil {
		c.logger.Warn("session_clear_failed", map[string]any{"error": err.Error()})
	}
	c.accessToken = ""
	c.refreshToken = ""
	c.user = nil
}

// expire is the profile-failure path: same clearing as SessionExpired but
// not debounced, because it is driven by a single explicit call.
func (c *Controller) expire() {
	c.mu.Lock()
	c.clearLocked()
	c.phase = PhaseExpired
	c.mu.Unlock()

	route := c.currentRoute()
	if route != RouteLogin && route != RouteChangePassword {
		c.navigate(RouteLogin)
	}
}
