package catalog

import (
	"context"
	"log/slog"

	"github.com/soleshop/soleshop/store"
)

// ProductEvent is one push from the product feed: a full catalog snapshot or
// a feed failure.
type ProductEvent struct {
	Products []*store.Product
	Err      error
}

// OrderEvent is one push from a user's order-history feed.
type OrderEvent struct {
	Orders []*store.Order
	Err    error
}

// ProductFeed pushes catalog snapshots until ctx is cancelled.
type ProductFeed interface {
	Subscribe(ctx context.Context) <-chan ProductEvent
}

// OrderFeed pushes one user's order history until ctx is cancelled.
type OrderFeed interface {
	Subscribe(ctx context.Context, userID string) <-chan OrderEvent
}

// Update is what the controller publishes to its consumer.
type Update struct {
	Products []*store.Product
	// Replace signals a ranking change: the consumer should redraw the whole
	// list rather than diff against what it already shows.
	Replace bool
	// Err is terminal; no further updates follow a non-nil Err.
	Err error
}

// FeedController merges three asynchronous inputs (the live product feed,
// the user's order history, and search-query changes) into the single
// product list shown to the user.
//
// All derived state (current snapshot, query, preference) is owned by the
// Run goroutine, so no locking is needed. Taste inference is network-bound
// and runs on its own goroutine; the merge path never waits on it. The most
// recently completed inference wins (last-write-wins on the preference
// store); no sequence guard discards a slow in-flight result.
type FeedController struct {
	userID   string
	products ProductFeed
	orders   OrderFeed
	analyzer *Analyzer
	prefs    *Preferences

	searchCh  chan string
	updatesCh chan Update
}

// NewFeedController creates a controller for one user session. Call Run to
// start it and Updates to consume the merged list.
func NewFeedController(userID string, products ProductFeed, orders OrderFeed, analyzer *Analyzer, prefs *Preferences) *FeedController {
	return &FeedController{
		userID:    userID,
		products:  products,
		orders:    orders,
		analyzer:  analyzer,
		prefs:     prefs,
		searchCh:  make(chan string, 1),
		updatesCh: make(chan Update, 8),
	}
}

// Updates returns the channel of merged list updates. It is closed when Run
// returns.
func (c *FeedController) Updates() <-chan Update {
	return c.updatesCh
}

// Search replaces the pending search query. Only the latest value matters;
// intermediate values may be dropped.
func (c *FeedController) Search(query string) {
	for {
		select {
		case c.searchCh <- query:
			return
		default:
			select {
			case <-c.searchCh:
			default:
			}
		}
	}
}

// Run drives the merge loop until ctx is cancelled or the product feed
// fails. It owns all controller state.
func (c *FeedController) Run(ctx context.Context) {
	defer close(c.updatesCh)

	productCh := c.products.Subscribe(ctx)
	orderCh := c.orders.Subscribe(ctx, c.userID)
	inferredCh := make(chan Preference, 1)

	var (
		snapshot     []*store.Product // full catalog, ranked by pref
		query        string
		pref         Preference
		prefLoaded   bool
		lastOrderKey string
	)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-productCh:
			if !ok {
				return
			}
			if event.Err != nil {
				c.emit(ctx, Update{Err: event.Err})
				return
			}
			if !prefLoaded {
				stored, found, err := c.prefs.Load(ctx, c.userID)
				if err != nil {
					slog.Warn("failed to load stored preference", "user_id", c.userID, "error", err)
				} else if found {
					pref = stored
				}
				prefLoaded = true
			}
			snapshot = Rank(event.Products, pref)
			c.emit(ctx, Update{Products: Filter(snapshot, query)})

		case event, ok := <-orderCh:
			if !ok {
				// The order feed may close before the session ends; the
				// catalog view keeps running without it.
				orderCh = nil
				continue
			}
			if event.Err != nil {
				// Order-feed failures never break the catalog view.
				slog.Warn("order feed error", "user_id", c.userID, "error", event.Err)
				continue
			}
			if c.analyzer == nil {
				// No inference backend configured; ranking stays as stored.
				continue
			}
			valid := nonCancelled(event.Orders)
			if len(valid) == 0 {
				continue
			}
			key := orderSetKey(valid)
			if key == lastOrderKey {
				continue
			}
			lastOrderKey = key
			// Inference is network-bound; keep it off the merge path.
			go func(orders []*store.Order) {
				inferred := c.analyzer.Analyze(ctx, orders)
				select {
				case inferredCh <- inferred:
				case <-ctx.Done():
				}
			}(valid)

		case inferred := <-inferredCh:
			if ctx.Err() != nil {
				// Session ended while inference was in flight: discard.
				return
			}
			if inferred.Equal(pref) {
				continue
			}
			if err := c.prefs.Save(ctx, c.userID, inferred); err != nil {
				slog.Warn("failed to persist preference", "user_id", c.userID, "error", err)
			}
			pref = inferred
			if len(snapshot) > 0 {
				snapshot = Rank(snapshot, pref)
				c.emit(ctx, Update{Products: Filter(snapshot, query), Replace: true})
			}

		case q := <-c.searchCh:
			if q == query {
				continue
			}
			query = q
			if snapshot != nil {
				c.emit(ctx, Update{Products: Filter(snapshot, query)})
			}
		}
	}
}

func (c *FeedController) emit(ctx context.Context, update Update) {
	select {
	case c.updatesCh <- update:
	case <-ctx.Done():
	}
}

func nonCancelled(orders []*store.Order) []*store.Order {
	valid := []*store.Order{}
	for _, o := range orders {
		if o.Status != store.OrderStatusCancelled {
			valid = append(valid, o)
		}
	}
	return valid
}

// orderSetKey fingerprints the non-cancelled order set so unchanged history
// does not retrigger inference.
func orderSetKey(orders []*store.Order) string {
	var key []byte
	for _, o := range orders {
		key = append(key, o.ID...)
		key = append(key, ':')
		key = append(key, o.Status...)
		key = append(key, ';')
	}
	return string(key)
}
