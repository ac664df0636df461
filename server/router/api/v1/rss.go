package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	apierrors "github.com/soleshop/soleshop/server/internal/errors"
	"github.com/soleshop/soleshop/store"
)

const maxRSSItemCount = 20

// ExploreRSS serves an RSS 2.0 feed of the newest products. Public, no
// auth required.
// GET /api/v1/explore/rss
func (s *APIV1Service) ExploreRSS(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := s.Store.ListProducts(ctx, &store.FindProduct{Limit: maxRSSItemCount})
	if err != nil {
		return apierrors.Internal("failed to list products", err)
	}

	baseURL := c.Scheme() + "://" + c.Request().Host
	feed := &feeds.Feed{
		Title:       "SoleShop New Arrivals",
		Link:        &feeds.Link{Href: baseURL},
		Description: "The newest shoes in the SoleShop catalog",
		Created:     time.Now(),
	}
	for _, p := range products {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          p.ID,
			Title:       fmt.Sprintf("%s %s", p.Brand, p.Name),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/products/%s", baseURL, p.ID)},
			Description: fmt.Sprintf("%s ($%.2f)", p.Description, p.Price),
			Created:     time.Unix(p.CreatedTs, 0),
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return apierrors.Internal("failed to render rss", err)
	}
	return c.Blob(http.StatusOK, "text/xml; charset=utf-8", []byte(rss))
}
