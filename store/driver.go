package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that a store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)

	// Product model related methods.
	CreateProduct(ctx context.Context, create *Product) (*Product, error)
	ListProducts(ctx context.Context, find *FindProduct) ([]*Product, error)
	UpdateProduct(ctx context.Context, update *Product) error
	DeleteProduct(ctx context.Context, delete *DeleteProduct) error

	// CartItem model related methods.
	CreateCartItem(ctx context.Context, create *CartItem) (*CartItem, error)
	ListCartItems(ctx context.Context, find *FindCartItem) ([]*CartItem, error)
	UpdateCartItem(ctx context.Context, update *UpdateCartItem) error
	DeleteCartItem(ctx context.Context, delete *DeleteCartItem) error

	// Order model related methods.
	// CreateOrder inserts the order and deletes the given cart rows in a
	// single transaction.
	CreateOrder(ctx context.Context, create *Order, cartItemIDs []string) (*Order, error)
	ListOrders(ctx context.Context, find *FindOrder) ([]*Order, error)
	UpdateOrder(ctx context.Context, update *UpdateOrder) error

	// UserPreference model related methods.
	UpsertUserPreference(ctx context.Context, upsert *UpsertUserPreference) (*UserPreference, error)
	GetUserPreference(ctx context.Context, find *FindUserPreference) (*UserPreference, error)
}
