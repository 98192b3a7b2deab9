package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/oxbridge-lms/internal/config"
	"github.com/iliyamo/oxbridge-lms/internal/kv"
	"github.com/iliyamo/oxbridge-lms/internal/model"
	"github.com/iliyamo/oxbridge-lms/internal/repository"
	"github.com/iliyamo/oxbridge-lms/internal/utils"
)

const testSecret = "test-secret"

func scopeCfg() ScopeConfig { return ScopeConfig{Secret: testSecret, TTLDays: 1} }

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func scopeEcho() *echo.Echo {
	e := echo.New()
	e.Use(BrowserScope(scopeCfg()))
	e.GET("/whoami", func(c echo.Context) error { return c.String(http.StatusOK, ScopeOf(c)) })
	return e
}

func TestBrowserScope_IssuesCookie(t *testing.T) {
	e := scopeEcho()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ScopeCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	scope, err := utils.ParseScopeToken(testSecret, cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, scope, rec.Body.String())
}

func TestBrowserScope_ReusesValidCookie(t *testing.T) {
	tok, err := utils.NewScopeToken(testSecret, 1)
	require.NoError(t, err)

	e := scopeEcho()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: ScopeCookie, Value: tok.Token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, tok.Scope, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestBrowserScope_ReplacesForgedCookie(t *testing.T) {
	forged, err := utils.NewScopeToken("someone-else", 1)
	require.NoError(t, err)

	e := scopeEcho()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: ScopeCookie, Value: forged.Token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.NotEqual(t, forged.Scope, rec.Body.String())
	assert.Len(t, rec.Result().Cookies(), 1)
}

func sessionEcho(store kv.Store, scope string) *echo.Echo {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if scope != "" {
				c.Set(ctxScope, scope)
			}
			return next(c)
		}
	})
	page := e.Group("", RequireSession(store, RedirectTo("/auth")))
	page.GET("/landing", func(c echo.Context) error {
		s, ok := SessionOf(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.String(http.StatusOK, s.UserName)
	})
	api := e.Group("/v1", RequireSession(store, Unauthorized))
	api.GET("/session", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func TestRequireSession(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()

	e := sessionEcho(store, "s1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/landing", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get(echo.HeaderLocation))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/session", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sessions := repository.NewSessionRepo(kv.NewLocal(store, "s1"))
	require.NoError(t, sessions.Set(ctx, model.SessionState{IsLoggedIn: true, UserName: "Ada", UserEmail: "ada@x.io"}))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/landing", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada", rec.Body.String())

	// another browser does not see the session
	rec = httptest.NewRecorder()
	sessionEcho(store, "s2").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/landing", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestRequireSession_NoScope(t *testing.T) {
	rec := httptest.NewRecorder()
	sessionEcho(kv.NewMemoryStore(), "").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/session", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSession_CorruptRecord(t *testing.T) {
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "s1", repository.KeySession, "{broken"))

	rec := httptest.NewRecorder()
	sessionEcho(store, "s1").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/landing", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTokenBucket_BlocksAfterCapacity(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "scope_route",
		Prefix:         "rl",
	}
	e := echo.New()
	e.POST("/auth/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, rdb))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		codes = append(codes, rec.Code)
		if i == 2 {
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
			assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		}
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestTokenBucket_DisabledOrNoRedis(t *testing.T) {
	e := echo.New()
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil)
	e.POST("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, mw)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestBuildRateKey_Strategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/auth/login")
	c.Set(ctxScope, "abc")

	cases := map[string]string{
		"ip":          "rl:ip:10.0.0.1",
		"scope":       "rl:scope:abc",
		"route":       "rl:route:POST /auth/login",
		"ip_scope":    "rl:ip:10.0.0.1:scope:abc",
		"scope_route": "rl:scope:abc:route:POST /auth/login",
		"":            "rl:ip:10.0.0.1:scope:abc:route:POST /auth/login",
	}
	for strategy, want := range cases {
		got := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}, c)
		assert.Equal(t, want, got, strategy)
	}
}
