package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soleshop/soleshop/internal/profile"
	"github.com/soleshop/soleshop/store"
)

// mockDriver is an in-memory store.Driver for handler tests.
type mockDriver struct {
	users       []*store.User
	products    []*store.Product
	cartItems   []*store.CartItem
	orders      []*store.Order
	preferences map[string]*store.UserPreference
}

func newMockDriver() *mockDriver {
	return &mockDriver{preferences: map[string]*store.UserPreference{}}
}

func (d *mockDriver) GetDB() *sql.DB { return nil }
func (d *mockDriver) Close() error   { return nil }

func (d *mockDriver) IsInitialized(context.Context) (bool, error) { return true, nil }

func (d *mockDriver) CreateUser(_ context.Context, create *store.User) (*store.User, error) {
	d.users = append(d.users, create)
	return create, nil
}

func (d *mockDriver) ListUsers(_ context.Context, find *store.FindUser) ([]*store.User, error) {
	matched := []*store.User{}
	for _, u := range d.users {
		if find.ID != nil && u.ID != *find.ID {
			continue
		}
		if find.Email != nil && u.Email != *find.Email {
			continue
		}
		if find.Role != nil && u.Role != *find.Role {
			continue
		}
		matched = append(matched, u)
	}
	return matched, nil
}

func (d *mockDriver) UpdateUser(_ context.Context, update *store.UpdateUser) (*store.User, error) {
	for _, u := range d.users {
		if u.ID == update.ID {
			if update.FullName != nil {
				u.FullName = *update.FullName
			}
			if update.AvatarURL != nil {
				u.AvatarURL = *update.AvatarURL
			}
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (d *mockDriver) CreateProduct(_ context.Context, create *store.Product) (*store.Product, error) {
	d.products = append(d.products, create)
	return create, nil
}

func (d *mockDriver) ListProducts(_ context.Context, find *store.FindProduct) ([]*store.Product, error) {
	matched := []*store.Product{}
	for _, p := range d.products {
		if find.ID != nil && p.ID != *find.ID {
			continue
		}
		if find.Brand != nil && p.Brand != *find.Brand {
			continue
		}
		matched = append(matched, p)
	}
	if find.Limit > 0 && len(matched) > find.Limit {
		matched = matched[:find.Limit]
	}
	return matched, nil
}

func (d *mockDriver) UpdateProduct(_ context.Context, update *store.Product) error {
	for i, p := range d.products {
		if p.ID == update.ID {
			d.products[i] = update
			return nil
		}
	}
	return sql.ErrNoRows
}

func (d *mockDriver) DeleteProduct(_ context.Context, delete *store.DeleteProduct) error {
	kept := d.products[:0]
	for _, p := range d.products {
		if p.ID != delete.ID {
			kept = append(kept, p)
		}
	}
	d.products = kept
	return nil
}

func (d *mockDriver) CreateCartItem(_ context.Context, create *store.CartItem) (*store.CartItem, error) {
	d.cartItems = append(d.cartItems, create)
	return create, nil
}

func (d *mockDriver) ListCartItems(_ context.Context, find *store.FindCartItem) ([]*store.CartItem, error) {
	matched := []*store.CartItem{}
	for _, item := range d.cartItems {
		if find.ID != nil && item.ID != *find.ID {
			continue
		}
		if find.UserID != nil && item.UserID != *find.UserID {
			continue
		}
		if find.ProductID != nil && item.ProductID != *find.ProductID {
			continue
		}
		if find.Size != nil && item.Size != *find.Size {
			continue
		}
		if find.Color != nil && item.Color != *find.Color {
			continue
		}
		matched = append(matched, item)
	}
	return matched, nil
}

func (d *mockDriver) UpdateCartItem(_ context.Context, update *store.UpdateCartItem) error {
	for _, item := range d.cartItems {
		if item.ID == update.ID {
			if update.Quantity != nil {
				item.Quantity = *update.Quantity
			}
			return nil
		}
	}
	return sql.ErrNoRows
}

func (d *mockDriver) DeleteCartItem(_ context.Context, delete *store.DeleteCartItem) error {
	kept := d.cartItems[:0]
	for _, item := range d.cartItems {
		if item.ID == delete.ID && item.UserID == delete.UserID {
			continue
		}
		kept = append(kept, item)
	}
	d.cartItems = kept
	return nil
}

func (d *mockDriver) CreateOrder(ctx context.Context, create *store.Order, cartItemIDs []string) (*store.Order, error) {
	d.orders = append(d.orders, create)
	for _, id := range cartItemIDs {
		if err := d.DeleteCartItem(ctx, &store.DeleteCartItem{ID: id, UserID: create.UserID}); err != nil {
			return nil, err
		}
	}
	return create, nil
}

func (d *mockDriver) ListOrders(_ context.Context, find *store.FindOrder) ([]*store.Order, error) {
	matched := []*store.Order{}
	for _, o := range d.orders {
		if find.ID != nil && o.ID != *find.ID {
			continue
		}
		if find.UserID != nil && o.UserID != *find.UserID {
			continue
		}
		matched = append(matched, o)
	}
	return matched, nil
}

func (d *mockDriver) UpdateOrder(_ context.Context, update *store.UpdateOrder) error {
	for _, o := range d.orders {
		if o.ID == update.ID {
			if update.Status != nil {
				o.Status = *update.Status
			}
			return nil
		}
	}
	return sql.ErrNoRows
}

func (d *mockDriver) UpsertUserPreference(_ context.Context, upsert *store.UpsertUserPreference) (*store.UserPreference, error) {
	row := &store.UserPreference{
		UserID:         upsert.UserID,
		FavoriteBrands: upsert.FavoriteBrands,
		PriceSensitive: upsert.PriceSensitive,
		UpdatedTs:      time.Now().Unix(),
	}
	d.preferences[upsert.UserID] = row
	return row, nil
}

func (d *mockDriver) GetUserPreference(_ context.Context, find *store.FindUserPreference) (*store.UserPreference, error) {
	if find.UserID == nil {
		return nil, nil
	}
	return d.preferences[*find.UserID], nil
}

type testEnv struct {
	service *APIV1Service
	driver  *mockDriver
	echo    *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	driver := newMockDriver()
	prof := &profile.Profile{Mode: "dev", Secret: "test-secret", Driver: "sqlite"}
	st := store.New(driver, prof)
	t.Cleanup(func() { _ = st.Close() })

	service, err := NewAPIV1Service(prof, st)
	require.NoError(t, err)
	e := echo.New()
	service.RegisterRoutes(e)
	return &testEnv{service: service, driver: driver, echo: e}
}

func (env *testEnv) request(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) signup(t *testing.T, email string) (string, *UserResponse) {
	t.Helper()
	rec := env.request(t, http.MethodPost, "/api/v1/auth/signup", "",
		`{"email":"`+email+`","password":"secret1","fullName":"Test User"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := &AuthResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), resp))
	return resp.Token, resp.User
}

func (env *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	_, user := env.signup(t, "admin@example.com")
	// Promote directly in the store, then mint a token with the new role.
	for _, u := range env.driver.users {
		if u.ID == user.ID {
			u.Role = store.RoleAdmin
		}
	}
	adminToken, err := env.service.Signer.Sign(user.ID, store.RoleAdmin)
	require.NoError(t, err)
	return adminToken
}

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t)

	token, user := env.signup(t, "shopper@example.com")
	assert.NotEmpty(t, token)
	assert.Equal(t, "shopper@example.com", user.Email)
	assert.Equal(t, store.RoleUser, user.Role)

	rec := env.request(t, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"shopper@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"shopper@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "shopper@example.com")

	rec := env.request(t, http.MethodPost, "/api/v1/auth/signup", "",
		`{"email":"shopper@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetCurrentUserRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.request(t, http.MethodGet, "/api/v1/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, user := env.signup(t, "shopper@example.com")
	rec = env.request(t, http.MethodGet, "/api/v1/users/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := &UserResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), got))
	assert.Equal(t, user.ID, got.ID)
}

func TestListProductsRankedByStoredPreference(t *testing.T) {
	env := newTestEnv(t)
	token, user := env.signup(t, "shopper@example.com")

	env.driver.products = []*store.Product{
		{ID: "adi", Name: "Samba", Brand: "Adidas", Price: 90, Sizes: []int{42}},
		{ID: "nik", Name: "Air Max", Brand: "Nike", Price: 120, Sizes: []int{42}},
	}
	_, err := env.driver.UpsertUserPreference(context.Background(), &store.UpsertUserPreference{
		UserID: user.ID, FavoriteBrands: "nike",
	})
	require.NoError(t, err)

	rec := env.request(t, http.MethodGet, "/api/v1/products", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []*ProductResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "nik", got[0].ID)
	assert.Equal(t, "adi", got[1].ID)
}

func TestListProductsSearchFilter(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "shopper@example.com")
	env.driver.products = []*store.Product{
		{ID: "adi", Name: "Samba", Brand: "Adidas"},
		{ID: "nik", Name: "Air Max", Brand: "Nike"},
	}

	rec := env.request(t, http.MethodGet, "/api/v1/products?q=samba", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []*ProductResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "adi", got[0].ID)
}

func TestAddCartItemDeduplicates(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "shopper@example.com")
	env.driver.products = []*store.Product{
		{ID: "nik", Name: "Air Max", Brand: "Nike", Price: 120, Sizes: []int{41, 42}},
	}

	body := `{"productId":"nik","quantity":1,"size":42,"color":"white"}`
	rec := env.request(t, http.MethodPost, "/api/v1/cart", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Same triple again: quantity bumps, no second row.
	rec = env.request(t, http.MethodPost, "/api/v1/cart", token, body)
	require.Equal(t, http.StatusOK, rec.Code)
	item := &CartItemResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), item))
	assert.Equal(t, 2, item.Quantity)
	assert.Len(t, env.driver.cartItems, 1)

	// Different size: separate row.
	rec = env.request(t, http.MethodPost, "/api/v1/cart", token,
		`{"productId":"nik","quantity":1,"size":41,"color":"white"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.driver.cartItems, 2)
}

func TestAddCartItemRejectsUnknownSize(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "shopper@example.com")
	env.driver.products = []*store.Product{
		{ID: "nik", Name: "Air Max", Brand: "Nike", Sizes: []int{42}},
	}

	rec := env.request(t, http.MethodPost, "/api/v1/cart", token,
		`{"productId":"nik","size":36,"color":"white"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderClearsCart(t *testing.T) {
	env := newTestEnv(t)
	token, user := env.signup(t, "shopper@example.com")
	env.driver.products = []*store.Product{
		{ID: "nik", Name: "Air Max", Brand: "Nike", Price: 100, Sizes: []int{42}},
	}
	rec := env.request(t, http.MethodPost, "/api/v1/cart", token,
		`{"productId":"nik","quantity":2,"size":42,"color":"white"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/orders", token, `{"address":"12 High St"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	order := &OrderResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), order))
	assert.Equal(t, user.ID, order.UserID)
	assert.Equal(t, store.OrderStatusPending, order.Status)
	assert.Equal(t, 200.0, order.TotalPrice)
	assert.Empty(t, env.driver.cartItems)
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "shopper@example.com")
	rec := env.request(t, http.MethodPost, "/api/v1/orders", token, `{"address":"12 High St"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "shopper@example.com")

	rec := env.request(t, http.MethodGet, "/api/v1/admin/orders", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/admin/orders", env.adminToken(t), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateOrderStatusValidates(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.adminToken(t)
	env.driver.orders = []*store.Order{{ID: "o1", UserID: "u1", Status: store.OrderStatusPending}}

	rec := env.request(t, http.MethodPatch, "/api/v1/admin/orders/o1/status", adminToken,
		`{"status":"TELEPORTED"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPatch, "/api/v1/admin/orders/o1/status", adminToken,
		`{"status":"shipping"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, store.OrderStatusShipping, env.driver.orders[0].Status)
}

func TestStatsRanges(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	orders := []*store.Order{
		{TotalPrice: 100, Status: store.OrderStatusDelivered, CreatedTs: now.Unix()},
		{TotalPrice: 50, Status: store.OrderStatusPending, CreatedTs: now.AddDate(0, 0, -40).Unix()},
		{TotalPrice: 25, Status: store.OrderStatusDelivered, CreatedTs: now.AddDate(-2, 0, 0).Unix()},
	}

	all, ok := rangeFilter("all", now)
	require.True(t, ok)
	stats := computeStats(orders, all)
	assert.Equal(t, 175.0, stats.TotalRevenue)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 2, stats.DeliveredOrders)

	today, ok := rangeFilter("today", now)
	require.True(t, ok)
	stats = computeStats(orders, today)
	assert.Equal(t, 100.0, stats.TotalRevenue)
	assert.Equal(t, 1, stats.TotalOrders)

	month, ok := rangeFilter("month", now)
	require.True(t, ok)
	stats = computeStats(orders, month)
	assert.Equal(t, 1, stats.TotalOrders)

	year, ok := rangeFilter("year", now)
	require.True(t, ok)
	stats = computeStats(orders, year)
	assert.Equal(t, 150.0, stats.TotalRevenue)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.DeliveredOrders)

	_, ok = rangeFilter("decade", now)
	assert.False(t, ok)
}

func TestExploreRSSIsPublic(t *testing.T) {
	env := newTestEnv(t)
	env.driver.products = []*store.Product{
		{ID: "nik", Name: "Air Max", Brand: "Nike", Price: 120, Description: "classic"},
	}

	rec := env.request(t, http.MethodGet, "/api/v1/explore/rss", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "xml")
	assert.Contains(t, rec.Body.String(), "Nike Air Max")
}

func TestChatUnavailableWithoutAI(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "shopper@example.com")

	rec := env.request(t, http.MethodPost, "/api/v1/chat", token, `{"message":"hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
