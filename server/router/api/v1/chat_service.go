package v1

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apierrors "github.com/soleshop/soleshop/server/internal/errors"
	"github.com/soleshop/soleshop/server/internal/observability"
	"github.com/soleshop/soleshop/server/middleware"
)

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// Chat answers one assistant message. Assistant failures are surfaced to
// the caller as 502, they are not swallowed like taste inference failures.
// POST /api/v1/chat
func (s *APIV1Service) Chat(c echo.Context) error {
	if s.ChatService == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "assistant is not configured")
	}
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(c)

	req := &ChatRequest{}
	if err := c.Bind(req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return apierrors.InvalidArgument("message is required")
	}

	reply, err := s.ChatService.Reply(ctx, userID, req.Message)
	if err != nil {
		if reqCtx, ok := observability.FromContext(ctx); ok {
			reqCtx.Warn("assistant reply failed", slog.String("error", err.Error()))
		}
		return apierrors.AssistantUnavailable("the assistant could not answer, try again shortly", err)
	}
	return c.JSON(http.StatusOK, &ChatResponse{Reply: reply})
}
