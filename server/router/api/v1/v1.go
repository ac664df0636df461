// Package v1 implements the JSON API under /api/v1.
package v1

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/soleshop/soleshop/internal/profile"
	"github.com/soleshop/soleshop/plugin/ai"
	"github.com/soleshop/soleshop/server/auth"
	apierrors "github.com/soleshop/soleshop/server/internal/errors"
	"github.com/soleshop/soleshop/server/middleware"
	"github.com/soleshop/soleshop/server/service/catalog"
	"github.com/soleshop/soleshop/server/service/chat"
	"github.com/soleshop/soleshop/store"
)

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	Signer  *auth.Signer

	// ChatService is nil when AI is disabled; the chat route then returns
	// 503.
	ChatService *chat.Service

	productFeed *catalog.StoreProductFeed
	orderFeed   *catalog.StoreOrderFeed
	analyzer    *catalog.Analyzer
	prefs       *catalog.Preferences
	limiter     *middleware.RateLimiter
}

// NewAPIV1Service wires the API against the store and, when the profile
// enables it, the generation backend.
func NewAPIV1Service(prof *profile.Profile, st *store.Store) (*APIV1Service, error) {
	service := &APIV1Service{
		Profile:     prof,
		Store:       st,
		Signer:      auth.NewSigner(prof.Secret, 0),
		productFeed: catalog.NewStoreProductFeed(st),
		orderFeed:   catalog.NewStoreOrderFeed(st),
		prefs:       catalog.NewPreferences(st),
		limiter:     middleware.NewRateLimiter(10, 20),
	}

	if prof.IsAIEnabled() {
		cfg := ai.NewConfigFromProfile(prof)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		generator, err := ai.NewGenerator(cfg)
		if err != nil {
			return nil, err
		}
		service.analyzer = catalog.NewAnalyzer(generator)
		service.ChatService = chat.NewService(generator, chat.NewContextBuilder(st))
	}

	return service, nil
}

// Analyzer returns the taste inference analyzer, or nil when AI is
// disabled.
func (s *APIV1Service) Analyzer() *catalog.Analyzer {
	return s.analyzer
}

// RegisterRoutes mounts all API routes on the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.RequestLogger(slog.Default()))
	e.HTTPErrorHandler = errorHandler(e)

	api := e.Group("/api/v1")

	// Public routes.
	api.POST("/auth/signup", s.Signup)
	api.POST("/auth/login", s.Login)
	api.GET("/explore/rss", s.ExploreRSS)

	// Authenticated routes.
	authed := api.Group("", middleware.BearerAuth(s.Signer), s.limiter.Middleware())
	authed.GET("/users/me", s.GetCurrentUser)
	authed.GET("/products", s.ListProducts)
	authed.GET("/products/:id", s.GetProduct)
	authed.GET("/catalog/stream", s.StreamCatalog)
	authed.GET("/cart", s.ListCartItems)
	authed.POST("/cart", s.AddCartItem)
	authed.DELETE("/cart/:id", s.RemoveCartItem)
	authed.POST("/orders", s.PlaceOrder)
	authed.GET("/orders", s.ListOrders)
	authed.POST("/chat", s.Chat)

	// Admin routes.
	admin := authed.Group("/admin", middleware.RequireAdmin())
	admin.GET("/users", s.ListUsers)
	admin.GET("/orders", s.ListAllOrders)
	admin.PATCH("/orders/:id/status", s.UpdateOrderStatus)
	admin.GET("/stats", s.GetStats)
	admin.POST("/products", s.CreateProduct)
	admin.PUT("/products/:id", s.UpdateProduct)
	admin.DELETE("/products/:id", s.DeleteProduct)
}

// errorHandler renders APIError values with their mapped status and keeps
// echo's default behavior for everything else.
func errorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if apiErr, ok := err.(*apierrors.APIError); ok {
			if apiErr.Cause != nil {
				if apierrors.IsCode(err, apierrors.ErrCodeInternal) {
					slog.Error("request failed", "code", apiErr.Code, "error", apiErr.Cause)
				} else {
					slog.Warn("request failed", "code", apiErr.Code, "error", apiErr.Cause)
				}
			}
			err = echo.NewHTTPError(apiErr.HTTPStatus(), apiErr.Message)
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}
