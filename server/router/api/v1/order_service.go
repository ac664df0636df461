package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	apierrors "github.com/soleshop/soleshop/server/internal/errors"
	"github.com/soleshop/soleshop/server/middleware"
	"github.com/soleshop/soleshop/store"
)

type OrderResponse struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	Items      []store.OrderItem `json:"items"`
	TotalPrice float64           `json:"totalPrice"`
	Status     string            `json:"status"`
	Address    string            `json:"address"`
	CreatedTs  int64             `json:"createdTs"`
}

type PlaceOrderRequest struct {
	Address string `json:"address"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func convertOrder(o *store.Order) *OrderResponse {
	return &OrderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		Items:      o.Items,
		TotalPrice: o.TotalPrice,
		Status:     o.Status,
		Address:    o.Address,
		CreatedTs:  o.CreatedTs,
	}
}

func convertOrderList(orders []*store.Order) []*OrderResponse {
	response := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, convertOrder(o))
	}
	return response
}

// PlaceOrder checks out the caller's cart: the order insert and the cart
// cleanup happen in one store transaction.
// POST /api/v1/orders
func (s *APIV1Service) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(c)

	req := &PlaceOrderRequest{}
	if err := c.Bind(req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	req.Address = strings.TrimSpace(req.Address)
	if req.Address == "" {
		return apierrors.InvalidArgument("delivery address is required")
	}

	cartItems, err := s.Store.ListCartItems(ctx, &store.FindCartItem{UserID: &userID})
	if err != nil {
		return apierrors.Internal("failed to load cart", err)
	}
	if len(cartItems) == 0 {
		return apierrors.InvalidArgument("cart is empty")
	}

	items := make([]store.OrderItem, 0, len(cartItems))
	cartItemIDs := make([]string, 0, len(cartItems))
	total := 0.0
	for _, item := range cartItems {
		items = append(items, store.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
			Size:        item.Size,
			Color:       item.Color,
		})
		cartItemIDs = append(cartItemIDs, item.ID)
		total += item.Price * float64(item.Quantity)
	}

	order, err := s.Store.CreateOrder(ctx, &store.Order{
		ID:         shortuuid.New(),
		UserID:     userID,
		Items:      items,
		TotalPrice: total,
		Status:     store.OrderStatusPending,
		Address:    req.Address,
		CreatedTs:  time.Now().Unix(),
	}, cartItemIDs)
	if err != nil {
		return apierrors.Internal("failed to place order", err)
	}
	return c.JSON(http.StatusOK, convertOrder(order))
}

// ListOrders returns the caller's order history, newest first.
// GET /api/v1/orders
func (s *APIV1Service) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(c)

	orders, err := s.Store.ListOrders(ctx, &store.FindOrder{UserID: &userID})
	if err != nil {
		return apierrors.Internal("failed to list orders", err)
	}
	return c.JSON(http.StatusOK, convertOrderList(orders))
}

// ListAllOrders returns every order for the back office.
// GET /api/v1/admin/orders
func (s *APIV1Service) ListAllOrders(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := s.Store.ListOrders(ctx, &store.FindOrder{})
	if err != nil {
		return apierrors.Internal("failed to list orders", err)
	}
	return c.JSON(http.StatusOK, convertOrderList(orders))
}

// UpdateOrderStatus moves an order through its lifecycle.
// PATCH /api/v1/admin/orders/:id/status
func (s *APIV1Service) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	req := &UpdateOrderStatusRequest{}
	if err := c.Bind(req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !store.IsValidOrderStatus(status) {
		return apierrors.InvalidArgument("unknown order status")
	}

	orders, err := s.Store.ListOrders(ctx, &store.FindOrder{ID: &id})
	if err != nil {
		return apierrors.Internal("failed to load order", err)
	}
	if len(orders) == 0 {
		return apierrors.NotFound("order not found")
	}

	if err := s.Store.UpdateOrder(ctx, &store.UpdateOrder{ID: id, Status: &status}); err != nil {
		return apierrors.Internal("failed to update order", err)
	}
	order := orders[0]
	order.Status = status
	return c.JSON(http.StatusOK, convertOrder(order))
}
