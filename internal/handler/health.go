package handler // declare the package name; contains HTTP handlers

import (
	"context"  // bounded ping of the store
	"net/http" // net/http provides status codes and response helpers
	"time"     // ping timeout

	"github.com/labstack/echo/v4" // echo is the web framework used for this project

	"github.com/iliyamo/oxbridge-lms/internal/kv" // store health check
)

// healthScope is a reserved scope no browser can obtain (scope ids are UUIDs).
const healthScope = "_health"

// Health reports whether the service and its key-value backend answer.  It
// returns plain text "ok" with 200, or 503 when the store read fails.
func Health(store kv.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if _, _, err := kv.NewLocal(store, healthScope).Get(ctx, "ping"); err != nil {
			return c.String(http.StatusServiceUnavailable, "store unavailable")
		}
		return c.String(http.StatusOK, "ok")
	}
}
