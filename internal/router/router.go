package router // package router defines how HTTP routes are registered

import (
	"strings" // route prefix trimming

	"github.com/labstack/echo/v4"                  // the Echo web framework handles routing
	echomw "github.com/labstack/echo/v4/middleware" // stock Echo middleware (recover, request logging)
	"github.com/redis/go-redis/v9"                 // optional redis for rate limiting

	"github.com/iliyamo/oxbridge-lms/internal/config"
	"github.com/iliyamo/oxbridge-lms/internal/handler"
	"github.com/iliyamo/oxbridge-lms/internal/materials"
	"github.com/iliyamo/oxbridge-lms/internal/middleware"
	"github.com/iliyamo/oxbridge-lms/internal/view"
)

// Options carries the redis-backed middleware settings.  A nil Redis
// disables the rate limiter.
type Options struct {
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
}

// New builds the Echo instance with the renderer, global middleware and
// every route registered.
func New(d *handler.Deps, opts Options) (*echo.Echo, error) {
	r, err := view.New()
	if err != nil {
		return nil, err
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = r
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			d.Log.Debug(c.Request().Context(), "request",
				"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	RegisterRoutes(e, d)
	RegisterApp(e, d, opts)
	return e, nil
}

// RegisterRoutes registers routes that need no browser scope: the health
// check and the local course PDFs.
func RegisterRoutes(e *echo.Echo, d *handler.Deps) {
	e.GET("/healthz", handler.Health(d.Store))
	e.Static(strings.TrimSuffix(materials.LocalRoute, "/"), d.Cfg.MaterialsDir)
}

// RegisterApp registers the pages and the JSON API.  Every route runs
// inside a browser scope; the study and course routes additionally need a
// signed-in session.
func RegisterApp(e *echo.Echo, d *handler.Deps, opts Options) {
	auth := handler.NewAuthHandler(d)
	landing := handler.NewLandingHandler(d)
	study := handler.NewStudyHandler(d)
	courses := handler.NewCourseHandler(d)

	limiter := middleware.NewTokenBucket(opts.RateLimit, opts.Redis)
	pageGate := middleware.RequireSession(d.Store, middleware.RedirectTo(handler.AuthPath))
	apiGate := middleware.RequireSession(d.Store, middleware.Unauthorized)

	app := e.Group("", middleware.BrowserScope(middleware.ScopeConfig{
		Secret:  d.Cfg.ScopeSecret,
		TTLDays: d.Cfg.ScopeTTLDays,
		Secure:  d.Cfg.IsProd(),
	}))

	// Pages.
	app.GET("/", landing.Root)
	app.GET(handler.AuthPath, auth.Page)
	app.POST(handler.AuthPath+"/:form", auth.Submit)
	app.POST(handler.AuthPath+"/:form/cancel", auth.Cancel)
	app.GET(handler.LandingPath, landing.Landing)
	app.POST("/logout", landing.Logout)
	app.GET("/study", study.Page, pageGate)
	app.POST("/study", study.Confirm, pageGate, limiter)
	app.GET("/courses", courses.Page, pageGate)

	// JSON API.
	v1 := app.Group("/v1")
	v1.POST("/auth/:form/submit", auth.APISubmit)
	v1.POST("/auth/:form/field", auth.APIField)
	v1.POST("/auth/:form/cancel", auth.APICancel)
	v1.GET("/session", landing.APISession)
	v1.POST("/logout", landing.APILogout)
	v1.GET("/courses", courses.APIList)
	v1.POST("/study", study.APIConfirm, apiGate, limiter)
	v1.GET("/courses/view", courses.APIView, apiGate)
}
