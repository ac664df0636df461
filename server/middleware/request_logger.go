package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	apierrors "github.com/soleshop/soleshop/server/internal/errors"
	"github.com/soleshop/soleshop/server/internal/observability"
)

// RequestLogger attaches a request-scoped logger (with a generated request
// ID) to the request context and logs one line per completed request.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqCtx := observability.NewRequestContext(logger)
			ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)

			reqCtx.UserID = UserIDFromContext(c)
			// The error handler has not rendered err yet, so the response
			// status still reflects the pre-handler state. Resolve it from
			// the error itself.
			status := c.Response().Status
			switch typed := err.(type) {
			case *echo.HTTPError:
				status = typed.Code
			case *apierrors.APIError:
				status = typed.HTTPStatus()
			}
			reqCtx.Info("request completed",
				slog.String(observability.LogFieldMethod, c.Request().Method),
				slog.String(observability.LogFieldPath, c.Request().URL.Path),
				slog.Int(observability.LogFieldStatus, status),
				slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
			)
			return err
		}
	}
}
