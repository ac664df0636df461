package v1

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soleshop/soleshop/server/internal/observability"
	"github.com/soleshop/soleshop/server/middleware"
	"github.com/soleshop/soleshop/server/service/catalog"
)

type streamPayload struct {
	Products []*ProductResponse `json:"products,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// StreamCatalog serves the live personalized catalog as server-sent
// events. Each event carries the full list to render:
//
//	event: update  - incremental re-emit (search change, new snapshot)
//	event: replace - the ranking changed, redraw the whole list
//	event: error   - terminal, the stream ends after it
//
// The q query parameter seeds the search filter.
// GET /api/v1/catalog/stream
func (s *APIV1Service) StreamCatalog(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(c)

	controller := catalog.NewFeedController(userID, s.productFeed, s.orderFeed, s.analyzer, s.prefs)
	go controller.Run(ctx)
	if q := c.QueryParam("q"); q != "" {
		controller.Search(q)
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	for update := range controller.Updates() {
		if update.Err != nil {
			if reqCtx, ok := observability.FromContext(ctx); ok {
				reqCtx.Error("catalog stream failed", update.Err)
			}
			if err := writeEvent(resp, "error", streamPayload{Error: update.Err.Error()}); err != nil {
				return nil
			}
			return nil
		}
		event := "update"
		if update.Replace {
			event = "replace"
		}
		payload := streamPayload{Products: convertProductList(update.Products)}
		if err := writeEvent(resp, event, payload); err != nil {
			return nil
		}
	}
	return nil
}

func writeEvent(resp *echo.Response, event string, payload streamPayload) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event, buf); err != nil {
		return err
	}
	resp.Flush()
	return nil
}
