package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	apierrors "github.com/soleshop/soleshop/server/internal/errors"
	"github.com/soleshop/soleshop/server/middleware"
	"github.com/soleshop/soleshop/server/service/catalog"
	"github.com/soleshop/soleshop/store"
)

type ProductResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Sizes       []int    `json:"sizes"`
	Colors      []string `json:"colors"`
	Stock       int      `json:"stock"`
	CreatedTs   int64    `json:"createdTs"`
}

type UpsertProductRequest struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Sizes       []int    `json:"sizes"`
	Colors      []string `json:"colors"`
	Stock       int      `json:"stock"`
}

func convertProduct(p *store.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Price:       p.Price,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Sizes:       p.Sizes,
		Colors:      p.Colors,
		Stock:       p.Stock,
		CreatedTs:   p.CreatedTs,
	}
}

func convertProductList(products []*store.Product) []*ProductResponse {
	response := make([]*ProductResponse, 0, len(products))
	for _, p := range products {
		response = append(response, convertProduct(p))
	}
	return response
}

// ListProducts returns the catalog ranked by the caller's stored taste
// profile, optionally narrowed by the q search parameter.
// GET /api/v1/products?q=
func (s *APIV1Service) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(c)

	products, err := s.Store.ListProducts(ctx, &store.FindProduct{})
	if err != nil {
		return apierrors.Internal("failed to list products", err)
	}

	pref, _, err := s.prefs.Load(ctx, userID)
	if err != nil {
		return apierrors.Internal("failed to load preference", err)
	}
	ranked := catalog.Rank(products, pref)
	ranked = catalog.Filter(ranked, c.QueryParam("q"))
	return c.JSON(http.StatusOK, convertProductList(ranked))
}

// GetProduct returns a single product.
// GET /api/v1/products/:id
func (s *APIV1Service) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := s.Store.GetProduct(ctx, c.Param("id"))
	if err != nil {
		return apierrors.Internal("failed to load product", err)
	}
	if product == nil {
		return apierrors.NotFound("product not found")
	}
	return c.JSON(http.StatusOK, convertProduct(product))
}

// CreateProduct adds a product to the catalog.
// POST /api/v1/admin/products
func (s *APIV1Service) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	req := &UpsertProductRequest{}
	if err := c.Bind(req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	if req.Name == "" || req.Brand == "" {
		return apierrors.InvalidArgument("name and brand are required")
	}
	if req.Price < 0 {
		return apierrors.InvalidArgument("price must not be negative")
	}

	product, err := s.Store.CreateProduct(ctx, &store.Product{
		ID:          shortuuid.New(),
		Name:        req.Name,
		Brand:       req.Brand,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		Stock:       req.Stock,
		CreatedTs:   time.Now().Unix(),
	})
	if err != nil {
		return apierrors.Internal("failed to create product", err)
	}
	return c.JSON(http.StatusOK, convertProduct(product))
}

// UpdateProduct replaces a product's fields.
// PUT /api/v1/admin/products/:id
func (s *APIV1Service) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	existing, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return apierrors.Internal("failed to load product", err)
	}
	if existing == nil {
		return apierrors.NotFound("product not found")
	}

	req := &UpsertProductRequest{}
	if err := c.Bind(req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	updated := &store.Product{
		ID:          id,
		Name:        req.Name,
		Brand:       req.Brand,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		Stock:       req.Stock,
		CreatedTs:   existing.CreatedTs,
	}
	if err := s.Store.UpdateProduct(ctx, updated); err != nil {
		return apierrors.Internal("failed to update product", err)
	}
	return c.JSON(http.StatusOK, convertProduct(updated))
}

// DeleteProduct removes a product from the catalog.
// DELETE /api/v1/admin/products/:id
func (s *APIV1Service) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.Store.DeleteProduct(ctx, &store.DeleteProduct{ID: c.Param("id")}); err != nil {
		return apierrors.Internal("failed to delete product", err)
	}
	return c.NoContent(http.StatusNoContent)
}
