package store

import (
	"context"
	"time"

	"github.com/soleshop/soleshop/internal/profile"
	"github.com/soleshop/soleshop/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Caches
	userCache       *cache.Cache // cache for users, keyed by user ID
	preferenceCache *cache.Cache // cache for user preferences, keyed by user ID
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	return &Store{
		driver:          driver,
		profile:         profile,
		userCache:       cache.New(cacheConfig),
		preferenceCache: cache.New(cacheConfig),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.userCache.Close()
	s.preferenceCache.Close()
	return s.driver.Close()
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(ctx, user.ID, user)
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

// GetUser returns a single user matching find, or nil when absent.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	if find.ID != nil && find.Email == nil && find.Role == nil {
		if v, ok := s.userCache.Get(ctx, *find.ID); ok {
			return v.(*User), nil
		}
	}
	users, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	user := users[0]
	s.userCache.Set(ctx, user.ID, user)
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	user, err := s.driver.UpdateUser(ctx, update)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(ctx, user.ID, user)
	return user, nil
}

func (s *Store) CreateProduct(ctx context.Context, create *Product) (*Product, error) {
	return s.driver.CreateProduct(ctx, create)
}

func (s *Store) ListProducts(ctx context.Context, find *FindProduct) ([]*Product, error) {
	return s.driver.ListProducts(ctx, find)
}

// GetProduct returns the product with the given ID, or nil when absent.
func (s *Store) GetProduct(ctx context.Context, id string) (*Product, error) {
	products, err := s.driver.ListProducts(ctx, &FindProduct{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return products[0], nil
}

func (s *Store) UpdateProduct(ctx context.Context, update *Product) error {
	return s.driver.UpdateProduct(ctx, update)
}

func (s *Store) DeleteProduct(ctx context.Context, delete *DeleteProduct) error {
	return s.driver.DeleteProduct(ctx, delete)
}

func (s *Store) CreateCartItem(ctx context.Context, create *CartItem) (*CartItem, error) {
	return s.driver.CreateCartItem(ctx, create)
}

func (s *Store) ListCartItems(ctx context.Context, find *FindCartItem) ([]*CartItem, error) {
	return s.driver.ListCartItems(ctx, find)
}

func (s *Store) UpdateCartItem(ctx context.Context, update *UpdateCartItem) error {
	return s.driver.UpdateCartItem(ctx, update)
}

func (s *Store) DeleteCartItem(ctx context.Context, delete *DeleteCartItem) error {
	return s.driver.DeleteCartItem(ctx, delete)
}

func (s *Store) CreateOrder(ctx context.Context, create *Order, cartItemIDs []string) (*Order, error) {
	return s.driver.CreateOrder(ctx, create, cartItemIDs)
}

func (s *Store) ListOrders(ctx context.Context, find *FindOrder) ([]*Order, error) {
	return s.driver.ListOrders(ctx, find)
}

func (s *Store) UpdateOrder(ctx context.Context, update *UpdateOrder) error {
	return s.driver.UpdateOrder(ctx, update)
}

func (s *Store) UpsertUserPreference(ctx context.Context, upsert *UpsertUserPreference) (*UserPreference, error) {
	pref, err := s.driver.UpsertUserPreference(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.preferenceCache.Set(ctx, pref.UserID, pref)
	return pref, nil
}

func (s *Store) GetUserPreference(ctx context.Context, find *FindUserPreference) (*UserPreference, error) {
	if find.UserID != nil {
		if v, ok := s.preferenceCache.Get(ctx, *find.UserID); ok {
			return v.(*UserPreference), nil
		}
	}
	pref, err := s.driver.GetUserPreference(ctx, find)
	if err != nil {
		return nil, err
	}
	if pref != nil {
		s.preferenceCache.Set(ctx, pref.UserID, pref)
	}
	return pref, nil
}
