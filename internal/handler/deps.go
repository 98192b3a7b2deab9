package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/oxbridge-lms/internal/catalog"
	"github.com/iliyamo/oxbridge-lms/internal/config"
	"github.com/iliyamo/oxbridge-lms/internal/delay"
	"github.com/iliyamo/oxbridge-lms/internal/kv"
	"github.com/iliyamo/oxbridge-lms/internal/logging"
	"github.com/iliyamo/oxbridge-lms/internal/middleware"
	"github.com/iliyamo/oxbridge-lms/internal/queue"
	"github.com/iliyamo/oxbridge-lms/internal/repository"
	"github.com/iliyamo/oxbridge-lms/internal/service"
	"github.com/iliyamo/oxbridge-lms/internal/study"
)

// Page paths the handlers redirect between.
const (
	AuthPath    = "/auth"
	LandingPath = "/landing"
)

// Deps bundles what every handler needs.  Stores are per browser scope, so
// handlers build their repositories from Store on each request.
type Deps struct {
	Cfg       config.Config
	Store     kv.Store
	Catalog   *catalog.Catalog
	Materials catalog.Resolver
	Scheduler *delay.Scheduler
	IDs       *study.IDGenerator
	Events    service.Publisher
	Log       logging.Logger

	redirects pendingRedirects
}

func (d *Deps) local(c echo.Context) *kv.Local {
	return kv.NewLocal(d.Store, middleware.ScopeOf(c))
}

func (d *Deps) users(c echo.Context) *repository.UserRepo {
	return repository.NewUserRepo(d.local(c))
}

func (d *Deps) sessions(c echo.Context) *repository.SessionRepo {
	return repository.NewSessionRepo(d.local(c))
}

// publish sends an audit event in the background.  Failures are logged by
// the publisher and never reach the user.
func (d *Deps) publish(ev queue.Event) {
	if d.Events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = d.Events.Publish(ctx, ev)
	}()
}

// internalError logs err and answers with a JSON error body.
func (d *Deps) internalError(c echo.Context, msg string, err error) error {
	d.Log.Error(c.Request().Context(), msg, "err", err, "scope", middleware.ScopeOf(c), "path", c.Path())
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}
