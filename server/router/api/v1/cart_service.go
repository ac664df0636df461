package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	apierrors "github.com/soleshop/soleshop/server/internal/errors"
	"github.com/soleshop/soleshop/server/middleware"
	"github.com/soleshop/soleshop/store"
)

type CartItemResponse struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Quantity    int     `json:"quantity"`
	Size        int     `json:"size"`
	Color       string  `json:"color"`
}

type AddCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      int    `json:"size"`
	Color     string `json:"color"`
}

func convertCartItem(item *store.CartItem) *CartItemResponse {
	return &CartItemResponse{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Price:       item.Price,
		ImageURL:    item.ImageURL,
		Quantity:    item.Quantity,
		Size:        item.Size,
		Color:       item.Color,
	}
}

// ListCartItems returns the caller's cart.
// GET /api/v1/cart
func (s *APIV1Service) ListCartItems(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(c)

	items, err := s.Store.ListCartItems(ctx, &store.FindCartItem{UserID: &userID})
	if err != nil {
		return apierrors.Internal("failed to list cart items", err)
	}
	response := make([]*CartItemResponse, 0, len(items))
	for _, item := range items {
		response = append(response, convertCartItem(item))
	}
	return c.JSON(http.StatusOK, response)
}

// AddCartItem adds a product to the cart. Adding a (product, size, color)
// triple that is already in the cart increments its quantity.
// POST /api/v1/cart
func (s *APIV1Service) AddCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(c)

	req := &AddCartItemRequest{}
	if err := c.Bind(req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	product, err := s.Store.GetProduct(ctx, req.ProductID)
	if err != nil {
		return apierrors.Internal("failed to load product", err)
	}
	if product == nil {
		return apierrors.NotFound("product not found")
	}
	if !containsInt(product.Sizes, req.Size) {
		return apierrors.InvalidArgument("size not available for this product")
	}

	existing, err := s.Store.ListCartItems(ctx, &store.FindCartItem{
		UserID:    &userID,
		ProductID: &req.ProductID,
		Size:      &req.Size,
		Color:     &req.Color,
	})
	if err != nil {
		return apierrors.Internal("failed to check cart", err)
	}
	if len(existing) > 0 {
		item := existing[0]
		quantity := item.Quantity + req.Quantity
		if err := s.Store.UpdateCartItem(ctx, &store.UpdateCartItem{ID: item.ID, Quantity: &quantity}); err != nil {
			return apierrors.Internal("failed to update cart item", err)
		}
		item.Quantity = quantity
		return c.JSON(http.StatusOK, convertCartItem(item))
	}

	item, err := s.Store.CreateCartItem(ctx, &store.CartItem{
		ID:          shortuuid.New(),
		UserID:      userID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       product.Price,
		ImageURL:    product.ImageURL,
		Quantity:    req.Quantity,
		Size:        req.Size,
		Color:       req.Color,
	})
	if err != nil {
		return apierrors.Internal("failed to add cart item", err)
	}
	return c.JSON(http.StatusOK, convertCartItem(item))
}

// RemoveCartItem deletes one cart line. The delete is scoped to the caller,
// removing another user's line is a no-op.
// DELETE /api/v1/cart/:id
func (s *APIV1Service) RemoveCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(c)

	if err := s.Store.DeleteCartItem(ctx, &store.DeleteCartItem{ID: c.Param("id"), UserID: userID}); err != nil {
		return apierrors.Internal("failed to remove cart item", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func containsInt(values []int, v int) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
