package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/soleshop/soleshop/store"
)

// defaultPollInterval is how often the store-backed feeds re-read their
// tables. The feeds only push when the result set actually changed.
const defaultPollInterval = 5 * time.Second

// FeedStore is the store surface the polling feeds need.
type FeedStore interface {
	ListProducts(ctx context.Context, find *store.FindProduct) ([]*store.Product, error)
	ListOrders(ctx context.Context, find *store.FindOrder) ([]*store.Order, error)
}

// StoreProductFeed polls the product table and pushes a snapshot whenever it
// changes. A read error is pushed once and ends the subscription, matching
// the terminal-error contract of the product feed.
type StoreProductFeed struct {
	store    FeedStore
	interval time.Duration
}

// NewStoreProductFeed creates a product feed over the store.
func NewStoreProductFeed(st FeedStore) *StoreProductFeed {
	return &StoreProductFeed{store: st, interval: defaultPollInterval}
}

func (f *StoreProductFeed) Subscribe(ctx context.Context) <-chan ProductEvent {
	ch := make(chan ProductEvent, 1)
	go func() {
		defer close(ch)
		var lastKey string

		poll := func() bool {
			products, err := f.store.ListProducts(ctx, &store.FindProduct{})
			if err != nil {
				push(ctx, ch, ProductEvent{Err: err})
				return false
			}
			key := snapshotKey(products)
			if key == lastKey {
				return true
			}
			lastKey = key
			return push(ctx, ch, ProductEvent{Products: products})
		}

		if !poll() {
			return
		}
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !poll() {
					return
				}
			}
		}
	}()
	return ch
}

// StoreOrderFeed polls one user's orders and pushes the history, newest
// first, whenever it changes. Read errors are pushed but do not end the
// subscription: the next tick retries.
type StoreOrderFeed struct {
	store    FeedStore
	interval time.Duration
}

// NewStoreOrderFeed creates an order feed over the store.
func NewStoreOrderFeed(st FeedStore) *StoreOrderFeed {
	return &StoreOrderFeed{store: st, interval: defaultPollInterval}
}

func (f *StoreOrderFeed) Subscribe(ctx context.Context, userID string) <-chan OrderEvent {
	ch := make(chan OrderEvent, 1)
	go func() {
		defer close(ch)
		var lastKey string

		poll := func() bool {
			orders, err := f.store.ListOrders(ctx, &store.FindOrder{UserID: &userID})
			if err != nil {
				return push(ctx, ch, OrderEvent{Err: err})
			}
			key := snapshotKey(orders)
			if key == lastKey {
				return true
			}
			lastKey = key
			return push(ctx, ch, OrderEvent{Orders: orders})
		}

		if !poll() {
			return
		}
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !poll() {
					return
				}
			}
		}
	}()
	return ch
}

func push[T any](ctx context.Context, ch chan<- T, event T) bool {
	select {
	case ch <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// snapshotKey fingerprints a result set for cheap change detection.
func snapshotKey(v any) string {
	buf, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(buf)
}
