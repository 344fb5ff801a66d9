package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qms-console/internal/api"
)

type fakeAPI struct {
	loginResult *LoginResult
	loginErr    error
	profile     *UserProfile
	profileErr  error
	postErr     error
	posts       []string
	gets        []string
}

func (f *fakeAPI) Post(ctx context.Context, path string, body, out any) error {
	f.posts = append(f.posts, path)
	switch path {
	case "/auth/login":
		if f.loginErr != nil {
			return f.loginErr
		}
		if target, ok := out.(*LoginResult); ok && f.loginResult != nil {
			*target = *f.loginResult
		}
		return nil
	default:
		return f.postErr
	}
}

func (f *fakeAPI) Get(ctx context.Context, path string, out any) error {
	f.gets = append(f.gets, path)
	if f.profileErr != nil {
		return f.profileErr
	}
	if target, ok := out.(*UserProfile); ok && f.profile != nil {
		*target = *f.profile
	}
	return nil
}

type navSpy struct {
	routes []string
}

func (n *navSpy) navigate(route string) { n.routes = append(n.routes, route) }

func newTestController(t *testing.T, client AuthAPI, opts Options) (*Controller, *Store) {
	t.Helper()
	store := NewStore(t.TempDir())
	controller := NewController(store, nil, opts)
	controller.SetClient(client)
	return controller, store
}

func TestLoginTransitionsAndPersists(t *testing.T) {
	client := &fakeAPI{loginResult: &LoginResult{
		AccessToken:        "access",
		RefreshToken:       "refresh",
		MustChangePassword: true,
		User:               &UserProfile{ID: "u1", Username: "calidad", Roles: []string{"admin"}},
	}}
	controller, store := newTestController(t, client, Options{})

	result, err := controller.Login(context.Background(), "calidad", "secret")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.MustChangePassword)

	assert.Equal(t, PhaseAuthenticated, controller.Phase())
	assert.True(t, controller.IsAuthenticated())
	assert.True(t, controller.User().MustChangePassword)

	state := store.Read()
	assert.Equal(t, "access", state.AccessToken)
	require.NotNil(t, state.User)
	assert.Equal(t, "calidad", state.User.Username)
}

func TestLoginFailureStaysAnonymous(t *testing.T) {
	client := &fakeAPI{loginErr: &api.Error{StatusCode: 401, Message: "invalid credentials"}}
	controller, _ := newTestController(t, client, Options{})

	_, err := controller.Login(context.Background(), "calidad", "wrong")
	require.Error(t, err)
	assert.Equal(t, PhaseAnonymous, controller.Phase())
	assert.False(t, controller.IsAuthenticated())
}

func TestIsAuthenticatedNeedsTokenAndProfile(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Write(State{AccessToken: "access", RefreshToken: "refresh"}))

	controller := NewController(store, nil, Options{})
	assert.False(t, controller.IsAuthenticated(), "token without profile is not authenticated")
	assert.Equal(t, PhaseAnonymous, controller.Phase())
}

func TestEnsureProfileFillsMissingUser(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Write(State{AccessToken: "access", RefreshToken: "refresh"}))

	client := &fakeAPI{profile: &UserProfile{ID: "u1", Username: "lider", Roles: []string{"leader"}}}
	controller := NewController(store, nil, Options{})
	controller.SetClient(client)

	require.NoError(t, controller.EnsureProfile(context.Background()))
	assert.True(t, controller.IsAuthenticated())
	assert.Equal(t, []string{"leader"}, controller.User().Roles)
	assert.Equal(t, []string{"/auth/profile"}, client.gets)

	// Already cached: no second fetch.
	require.NoError(t, controller.EnsureProfile(context.Background()))
	assert.Len(t, client.gets, 1)
}

func TestProfileFetchFailureClearsSession(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Write(State{AccessToken: "access", RefreshToken: "refresh"}))

	nav := &navSpy{}
	client := &fakeAPI{profileErr: &api.Error{StatusCode: 500}}
	controller := NewController(store, nil, Options{Navigate: nav.navigate})
	controller.SetClient(client)

	require.Error(t, controller.RefreshProfile(context.Background()))
	assert.Equal(t, PhaseExpired, controller.Phase())
	assert.Empty(t, controller.AccessToken())
	assert.Empty(t, store.Read().AccessToken)
	assert.Equal(t, []string{RouteLogin}, nav.routes)
}

func TestLogoutIsBestEffort(t *testing.T) {
	client := &fakeAPI{loginResult: &LoginResult{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &UserProfile{ID: "u1", Username: "calidad"},
	}}
	nav := &navSpy{}
	controller, store := newTestController(t, client, Options{Navigate: nav.navigate})

	_, err := controller.Login(context.Background(), "calidad", "secret")
	require.NoError(t, err)

	client.postErr = errors.New("backend down")
	controller.Logout(context.Background())

	assert.Equal(t, PhaseAnonymous, controller.Phase())
	assert.False(t, controller.IsAuthenticated())
	assert.Empty(t, store.Read().AccessToken)
	assert.Contains(t, client.posts, "/auth/logout")
	assert.Equal(t, []string{RouteLogin}, nav.routes)
}

func TestChangePasswordClearsFlagLocally(t *testing.T) {
	client := &fakeAPI{loginResult: &LoginResult{
		AccessToken:        "access",
		RefreshToken:       "refresh",
		MustChangePassword: true,
		User:               &UserProfile{ID: "u1", Username: "calidad"},
	}}
	controller, store := newTestController(t, client, Options{})

	_, err := controller.Login(context.Background(), "calidad", "secret")
	require.NoError(t, err)
	require.True(t, controller.User().MustChangePassword)

	require.NoError(t, controller.ChangePassword(context.Background(), "secret", "better-secret"))
	assert.False(t, controller.User().MustChangePassword)
	assert.False(t, store.Read().User.MustChangePassword)
	assert.Contains(t, client.posts, "/auth/change-password")
}

func TestChangePasswordRequiresAuthentication(t *testing.T) {
	controller, _ := newTestController(t, &fakeAPI{}, Options{})
	err := controller.ChangePassword(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSessionExpiredDebounce(t *testing.T) {
	now := time.Unix(1000, 0)
	nav := &navSpy{}
	controller, store := newTestController(t, &fakeAPI{}, Options{
		Navigate: nav.navigate,
		Now:      func() time.Time { return now },
	})
	require.NoError(t, store.Write(State{AccessToken: "access", RefreshToken: "refresh"}))

	controller.SessionExpired()
	now = now.Add(500 * time.Millisecond)
	controller.SessionExpired()
	assert.Len(t, nav.routes, 1, "second expiry within the window is suppressed")

	now = now.Add(2 * time.Second)
	controller.SessionExpired()
	assert.Len(t, nav.routes, 2, "a new window allows another redirect")

	assert.Equal(t, PhaseExpired, controller.Phase())
	assert.Empty(t, store.Read().AccessToken)
}

func TestSessionExpiredSkipsRedirectOnAuthScreens(t *testing.T) {
	for _, route := range []string{RouteLogin, RouteChangePassword} {
		nav := &navSpy{}
		controller, _ := newTestController(t, &fakeAPI{}, Options{
			Navigate:     nav.navigate,
			CurrentRoute: func() string { return route },
		})

		controller.SessionExpired()
		assert.Empty(t, nav.routes, route)
	}
}

func TestHasAnyRole(t *testing.T) {
	client := &fakeAPI{loginResult: &LoginResult{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &UserProfile{ID: "u1", Username: "calidad", Roles: []string{"leader", "reader"}},
	}}
	controller, _ := newTestController(t, client, Options{})
	_, err := controller.Login(context.Background(), "calidad", "secret")
	require.NoError(t, err)

	assert.True(t, controller.HasAnyRole(), "empty requirement always passes")
	assert.True(t, controller.HasAnyRole("admin", "leader"))
	assert.False(t, controller.HasAnyRole("admin"))
}

func TestHasAnyRoleWithoutProfile(t *testing.T) {
	controller, _ := newTestController(t, &fakeAPI{}, Options{})
	assert.True(t, controller.HasAnyRole())
	assert.False(t, controller.HasAnyRole("admin"))
}

func TestStoreTokensKeepsProfile(t *testing.T) {
	client := &fakeAPI{loginResult: &LoginResult{
		AccessToken:  "a1",
		RefreshToken: "r1",
		User:         &UserProfile{ID: "u1", Username: "calidad"},
	}}
	controller, store := newTestController(t, client, Options{})
	_, err := controller.Login(context.Background(), "calidad", "secret")
	require.NoError(t, err)

	controller.StoreTokens(api.Tokens{AccessToken: "a2", RefreshToken: "r2"})

	assert.Equal(t, "a2", controller.AccessToken())
	assert.Equal(t, "r2", controller.RefreshToken())
	assert.True(t, controller.IsAuthenticated(), "rotation does not drop the profile")
	assert.Equal(t, "calidad", store.Read().User.Username)
}

func TestTokenExpiry(t *testing.T) {
	expiry := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	controller, store := newTestController(t, &fakeAPI{}, Options{})
	require.NoError(t, store.Write(State{AccessToken: signed, RefreshToken: "r"}))
	controller.StoreTokens(api.Tokens{AccessToken: signed, RefreshToken: "r"})

	got, ok := controller.TokenExpiry()
	require.True(t, ok)
	assert.Equal(t, expiry.Unix(), got.Unix())
}

func TestTokenExpiryWithoutToken(t *testing.T) {
	controller, _ := newTestController(t, &fakeAPI{}, Options{})
	_, ok := controller.TokenExpiry()
	assert.False(t, ok)

	controller.StoreTokens(api.Tokens{AccessToken: "not-a-jwt"})
	_, ok = controller.TokenExpiry()
	assert.False(t, ok)
}
