package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/oxbridge-lms/internal/catalog"
	"github.com/iliyamo/oxbridge-lms/internal/config"
	"github.com/iliyamo/oxbridge-lms/internal/delay"
	"github.com/iliyamo/oxbridge-lms/internal/kv"
	"github.com/iliyamo/oxbridge-lms/internal/logging"
	"github.com/iliyamo/oxbridge-lms/internal/middleware"
	"github.com/iliyamo/oxbridge-lms/internal/model"
	"github.com/iliyamo/oxbridge-lms/internal/repository"
	"github.com/iliyamo/oxbridge-lms/internal/study"
	"github.com/iliyamo/oxbridge-lms/internal/view"
)

type downStore struct{}

func (downStore) Get(context.Context, string, string) (string, error)   { return "", errors.New("down") }
func (downStore) Set(context.Context, string, string, string) error     { return errors.New("down") }
func (downStore) Delete(context.Context, string, ...string) error       { return errors.New("down") }

type failingResolver struct{}

func (failingResolver) Resolve(context.Context, string) (string, error) {
	return "", errors.New("presign failed")
}

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/healthz", Health(kv.NewMemoryStore()))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	e = echo.New()
	e.GET("/healthz", Health(downStore{}))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// withScope pins every request to one browser scope.
func withScope(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("scope", scope)
			return next(c)
		}
	}
}

func TestCourseHandler_APIView(t *testing.T) {
	cat, err := catalog.Parse([]byte(`
courses:
  - title: Algorithms
    documents:
      - {name: Summary, path: pdfs/a.pdf, category: Complete Course}
`))
	require.NoError(t, err)
	h := NewCourseHandler(&Deps{Catalog: cat, Materials: failingResolver{}, Log: logging.Discard()})

	e := echo.New()
	e.GET("/v1/courses/view", h.APIView, withScope("s"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/courses/view?title=Algorithms", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"list"`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/courses/view?title=Algorithms&doc=0", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"open document failed"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/courses/view", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"closed"`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/courses/view?title=Unknown", nil))
	assert.Contains(t, rec.Body.String(), `"state":"coming_soon"`)
}

func TestLandingHandler_APILogout(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()
	local := kv.NewLocal(store, "s")
	sessions := repository.NewSessionRepo(local)
	users := repository.NewUserRepo(local)
	require.NoError(t, users.Upsert(ctx, model.User{Name: "Ada", Email: "ada@x.io", Password: "secret1"}))
	require.NoError(t, sessions.Set(ctx, model.SessionState{IsLoggedIn: true, UserName: "Ada", UserEmail: "ada@x.io"}))
	require.NoError(t, sessions.SetCourse(ctx, "Logic"))
	require.NoError(t, sessions.SetSessionID(ctx, "OXBRIDGE-1-AAAAAAAAA"))

	h := NewLandingHandler(&Deps{Store: store, Log: logging.Discard()})
	e := echo.New()
	e.POST("/v1/logout", h.APILogout, withScope("s"))
	e.GET("/v1/session", h.APISession, withScope("s"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"redirect":"/auth"}`, rec.Body.String())

	s, err := sessions.Get(ctx)
	require.NoError(t, err)
	assert.False(t, s.IsLoggedIn)
	course, id, err := sessions.Study(ctx)
	require.NoError(t, err)
	assert.Empty(t, course)
	assert.Empty(t, id)

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLandingHandler_CorruptSession(t *testing.T) {
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "s", repository.KeySession, "not json"))

	h := NewLandingHandler(&Deps{Store: store, Log: logging.Discard()})
	e := echo.New()
	e.GET("/v1/session", h.APISession, withScope("s"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/session", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"load session failed"}`, rec.Body.String())
}

func TestScopeOfUsesMiddlewareKey(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	withScope("abc")(func(c echo.Context) error { return nil })(c)
	assert.Equal(t, "abc", middleware.ScopeOf(c))
}

type okResolver struct{}

func (okResolver) Resolve(_ context.Context, path string) (string, error) { return "/m/" + path, nil }

func newAuthEcho(t *testing.T, d *Deps) *echo.Echo {
	t.Helper()
	r, err := view.New()
	require.NoError(t, err)
	h := NewAuthHandler(d)
	e := echo.New()
	e.Renderer = r
	e.POST("/auth/:form", h.Submit, withScope("s"))
	e.POST("/auth/:form/cancel", h.Cancel, withScope("s"))
	e.POST("/v1/auth/:form/submit", h.APISubmit, withScope("s"))
	e.POST("/v1/auth/:form/cancel", h.APICancel, withScope("s"))
	return e
}

func authDeps() *Deps {
	return &Deps{
		Cfg:       config.Config{RedirectDelay: time.Hour},
		Store:     kv.NewMemoryStore(),
		Scheduler: delay.NewScheduler(),
		Log:       logging.Discard(),
	}
}

func serve(e *echo.Echo, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_SubmitShowsSubmittingThenCancels(t *testing.T) {
	d := authDeps()
	e := newAuthEcho(t, d)
	form := url.Values{"name": {"Ada"}, "email": {"ada@x.io"}, "password": {"secret1"}, "confirm": {"secret1"}}.Encode()

	rec := serve(e, http.MethodPost, "/auth/register", echo.MIMEApplicationForm, form)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<button type=\"submit\" disabled>Creating Account...</button>")
	assert.Contains(t, body, `<meta http-equiv="refresh" content="3600;url=/landing">`)
	assert.Contains(t, body, `formaction="/auth/register/cancel"`)
	assert.Equal(t, 1, d.Scheduler.Pending())

	rec = serve(e, http.MethodPost, "/auth/register/cancel", echo.MIMEApplicationForm, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, "<button type=\"submit\">Create Account</button>")
	assert.Contains(t, body, `value="ada@x.io"`)
	assert.NotContains(t, body, `http-equiv="refresh"`)
	assert.Zero(t, d.Scheduler.Pending())

	// nothing left to cancel
	rec = serve(e, http.MethodPost, "/auth/register/cancel", echo.MIMEApplicationForm, "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LandingPath, rec.Header().Get(echo.HeaderLocation))
}

func TestAuthHandler_APISubmitAnswersBeforeRedirect(t *testing.T) {
	d := authDeps()
	require.NoError(t, repository.NewUserRepo(kv.NewLocal(d.Store, "s")).Upsert(context.Background(),
		model.User{Name: "Ada", Email: "ada@x.io", Password: "secret1"}))
	e := newAuthEcho(t, d)

	start := time.Now()
	rec := serve(e, http.MethodPost, "/v1/auth/login/submit", echo.MIMEApplicationJSON, `{"email":"ada@x.io","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Less(t, time.Since(start), time.Minute)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "submitting", out["state"])
	assert.Equal(t, "Signing In...", out["submitLabel"])
	assert.Equal(t, true, out["submitDisabled"])
	assert.Equal(t, "/landing", out["redirect"])
	assert.Equal(t, float64(time.Hour.Milliseconds()), out["redirectInMs"])

	rec = serve(e, http.MethodPost, "/v1/auth/login/cancel", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "idle", out["state"])
	assert.Equal(t, "Sign In", out["submitLabel"])
	assert.Equal(t, false, out["submitDisabled"])

	rec = serve(e, http.MethodPost, "/v1/auth/login/cancel", "", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = serve(e, http.MethodPost, "/v1/auth/admin/cancel", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCourseHandler_Actions(t *testing.T) {
	cat, err := catalog.Parse([]byte(`
courses:
  - title: Algorithms
    documents:
      - {name: Summary, path: pdfs/a.pdf, category: Complete Course}
`))
	require.NoError(t, err)
	h := NewCourseHandler(&Deps{Catalog: cat, Materials: okResolver{}, Log: logging.Discard()})
	e := echo.New()
	e.GET("/v1/courses/view", h.APIView, withScope("s"))

	rec := serve(e, http.MethodGet, "/v1/courses/view?title=Algorithms&doc=0", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"document"`)
	assert.Contains(t, rec.Body.String(), `"index":0`)

	rec = serve(e, http.MethodGet, "/v1/courses/view?title=Algorithms&doc=0&action=back", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"list"`)
	assert.NotContains(t, rec.Body.String(), `"embedUrl"`)

	rec = serve(e, http.MethodGet, "/v1/courses/view?title=Algorithms&action=close", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"state":"closed"}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/v1/courses/view?title=Algorithms&action=zoom", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudyHandler_Cancel(t *testing.T) {
	store := kv.NewMemoryStore()
	sessions := repository.NewSessionRepo(kv.NewLocal(store, "s"))
	require.NoError(t, sessions.Set(context.Background(), model.SessionState{IsLoggedIn: true, UserName: "Ada", UserEmail: "ada@x.io"}))

	h := NewStudyHandler(&Deps{Store: store, IDs: study.NewIDGenerator(), Log: logging.Discard()})
	e := echo.New()
	e.POST("/study", h.Confirm, withScope("s"))
	e.POST("/v1/study", h.APIConfirm, withScope("s"))

	rec := serve(e, http.MethodPost, "/v1/study", echo.MIMEApplicationJSON, `{"action":"cancel","subject":"Logic"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"state":"closed"}`, rec.Body.String())

	rec = serve(e, http.MethodPost, "/study", echo.MIMEApplicationForm, "subject=Logic&action=cancel")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LandingPath, rec.Header().Get(echo.HeaderLocation))

	rec = serve(e, http.MethodPost, "/v1/study", echo.MIMEApplicationJSON, `{"action":"launch"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	course, id, err := sessions.Study(context.Background())
	require.NoError(t, err)
	assert.Empty(t, course)
	assert.Empty(t, id)
}
