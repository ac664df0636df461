package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soleshop/soleshop/plugin/ai"
	"github.com/soleshop/soleshop/store"
)

type fakeProductFeed struct{ ch chan ProductEvent }

func (f *fakeProductFeed) Subscribe(context.Context) <-chan ProductEvent { return f.ch }

type fakeOrderFeed struct{ ch chan OrderEvent }

func (f *fakeOrderFeed) Subscribe(context.Context, string) <-chan OrderEvent { return f.ch }

type feedFixture struct {
	products *fakeProductFeed
	orders   *fakeOrderFeed
	gen      *fakeGenerator
	prefSt   *mockPreferenceStore
	ctrl     *FeedController
	cancel   context.CancelFunc
}

func newFeedFixture(t *testing.T, genResponse string) *feedFixture {
	t.Helper()
	f := &feedFixture{
		products: &fakeProductFeed{ch: make(chan ProductEvent, 4)},
		orders:   &fakeOrderFeed{ch: make(chan OrderEvent, 4)},
		gen:      &fakeGenerator{response: genResponse},
		prefSt:   newMockPreferenceStore(),
	}
	f.ctrl = NewFeedController("u1", f.products, f.orders, NewAnalyzer(f.gen), NewPreferences(f.prefSt))

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	t.Cleanup(cancel)
	go f.ctrl.Run(ctx)
	return f
}

func waitUpdate(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case update, ok := <-ch:
		require.True(t, ok, "updates channel closed unexpectedly")
		return update
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed update")
		return Update{}
	}
}

func waitClosed(t *testing.T, ch <-chan Update) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for updates channel to close")
		}
	}
}

func TestFeedEmitsSnapshotRankedByStoredPreference(t *testing.T) {
	f := newFeedFixture(t, "")
	require.NoError(t, NewPreferences(f.prefSt).Save(context.Background(), "u1",
		Preference{FavoriteBrands: []string{"nike"}}))

	f.products.ch <- ProductEvent{Products: []*store.Product{
		{ID: "a", Brand: "Adidas", Name: "Samba", Price: 90},
		{ID: "b", Brand: "Nike", Name: "Air Max", Price: 120},
	}}

	update := waitUpdate(t, f.ctrl.Updates())
	require.NoError(t, update.Err)
	assert.Equal(t, []string{"b", "a"}, productIDs(update.Products))
}

func TestFeedSearchFiltersSnapshot(t *testing.T) {
	f := newFeedFixture(t, "")
	f.products.ch <- ProductEvent{Products: []*store.Product{
		{ID: "a", Brand: "Nike", Name: "Air Max"},
		{ID: "b", Brand: "Adidas", Name: "Samba"},
	}}
	waitUpdate(t, f.ctrl.Updates())

	f.ctrl.Search("samba")
	update := waitUpdate(t, f.ctrl.Updates())
	assert.Equal(t, []string{"b"}, productIDs(update.Products))
	assert.False(t, update.Replace)

	f.ctrl.Search("")
	update = waitUpdate(t, f.ctrl.Updates())
	assert.Equal(t, []string{"a", "b"}, productIDs(update.Products))
}

func TestFeedOrderChangeTriggersRerank(t *testing.T) {
	f := newFeedFixture(t, "BRANDS:nike|PRICE_SENSITIVE:FALSE")
	f.products.ch <- ProductEvent{Products: []*store.Product{
		{ID: "a", Brand: "Adidas", Name: "Samba", Price: 120},
		{ID: "b", Brand: "Nike", Name: "Air Max", Price: 120},
	}}
	waitUpdate(t, f.ctrl.Updates())

	f.orders.ch <- OrderEvent{Orders: []*store.Order{
		{ID: "o1", Status: store.OrderStatusDelivered,
			Items: []store.OrderItem{{ProductName: "Nike Air", Price: 150}}},
	}}

	update := waitUpdate(t, f.ctrl.Updates())
	assert.True(t, update.Replace, "a ranking change must signal a full redraw")
	assert.Equal(t, []string{"b", "a"}, productIDs(update.Products))

	// The inferred profile was persisted.
	loaded, ok, err := NewPreferences(f.prefSt).Load(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"nike"}, loaded.FavoriteBrands)
}

func TestFeedUnchangedPreferenceSkipsWrite(t *testing.T) {
	f := newFeedFixture(t, "BRANDS:nike|PRICE_SENSITIVE:FALSE")
	require.NoError(t, NewPreferences(f.prefSt).Save(context.Background(), "u1",
		Preference{FavoriteBrands: []string{"nike"}}))
	writesBefore := f.prefSt.upserts

	f.products.ch <- ProductEvent{Products: []*store.Product{
		{ID: "a", Brand: "Nike", Price: 120},
	}}
	waitUpdate(t, f.ctrl.Updates())

	f.orders.ch <- OrderEvent{Orders: []*store.Order{
		{ID: "o1", Status: store.OrderStatusDelivered,
			Items: []store.OrderItem{{ProductName: "Nike Air", Price: 150}}},
	}}

	// Give the async inference time to complete and be compared.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, writesBefore, f.prefSt.upserts, "identical inference must not rewrite the store")

	select {
	case update := <-f.ctrl.Updates():
		t.Fatalf("unexpected update: %+v", update)
	default:
	}
}

func TestFeedCancelledOrdersAreIgnored(t *testing.T) {
	f := newFeedFixture(t, "BRANDS:nike|PRICE_SENSITIVE:FALSE")
	f.products.ch <- ProductEvent{Products: []*store.Product{{ID: "a", Brand: "Nike"}}}
	waitUpdate(t, f.ctrl.Updates())

	f.orders.ch <- OrderEvent{Orders: []*store.Order{
		{ID: "o1", Status: store.OrderStatusCancelled,
			Items: []store.OrderItem{{ProductName: "Nike Air", Price: 150}}},
	}}

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, f.gen.prompts, "a purely-cancelled order set must not trigger inference")
}

func TestFeedProductErrorIsTerminal(t *testing.T) {
	f := newFeedFixture(t, "")
	f.products.ch <- ProductEvent{Err: errors.New("permission denied")}

	update := waitUpdate(t, f.ctrl.Updates())
	require.Error(t, update.Err)
	assert.Contains(t, update.Err.Error(), "permission denied")
	waitClosed(t, f.ctrl.Updates())
}

func TestFeedCancellationClosesUpdates(t *testing.T) {
	f := newFeedFixture(t, "")
	f.cancel()
	waitClosed(t, f.ctrl.Updates())
}

// blockingGenerator holds every Generate call open until release is closed,
// so a test can cancel the session while inference is still in flight.
type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
}

func (g *blockingGenerator) Generate(context.Context, string) (string, error) {
	close(g.started)
	<-g.release
	return "BRANDS:puma|PRICE_SENSITIVE:FALSE", nil
}

func (g *blockingGenerator) Chat(ctx context.Context, _ []ai.Message) (string, error) {
	return g.Generate(ctx, "")
}

func TestFeedInferenceFinishingAfterCancelIsDiscarded(t *testing.T) {
	gen := &blockingGenerator{started: make(chan struct{}), release: make(chan struct{})}
	prefSt := newMockPreferenceStore()
	products := &fakeProductFeed{ch: make(chan ProductEvent, 4)}
	orders := &fakeOrderFeed{ch: make(chan OrderEvent, 4)}
	ctrl := NewFeedController("u1", products, orders, NewAnalyzer(gen), NewPreferences(prefSt))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go ctrl.Run(ctx)

	products.ch <- ProductEvent{Products: []*store.Product{
		{ID: "a", Brand: "Nike", Name: "Air Max", Price: 120},
	}}
	waitUpdate(t, ctrl.Updates())

	orders.ch <- OrderEvent{Orders: []*store.Order{
		{ID: "o1", Status: store.OrderStatusDelivered,
			Items: []store.OrderItem{{ProductName: "Puma Rider", Price: 80}}},
	}}

	select {
	case <-gen.started:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for inference to start")
	}

	// End the session while the inference call is still held open, then let
	// it complete. Its late result must be dropped, not persisted.
	cancel()
	waitClosed(t, ctrl.Updates())
	close(gen.release)

	assert.Zero(t, prefSt.upserts, "a result landing after cancellation must not be persisted")
	assert.Empty(t, prefSt.rows)
}

func TestFeedOrderFeedCloseKeepsCatalogAlive(t *testing.T) {
	f := newFeedFixture(t, "")
	close(f.orders.ch)

	f.products.ch <- ProductEvent{Products: []*store.Product{
		{ID: "a", Brand: "Nike", Name: "Air Max"},
	}}
	update := waitUpdate(t, f.ctrl.Updates())
	require.NoError(t, update.Err)
	assert.Equal(t, []string{"a"}, productIDs(update.Products))

	f.cancel()
	waitClosed(t, f.ctrl.Updates())
}

func TestFeedEndToEndNikePreference(t *testing.T) {
	f := newFeedFixture(t, "BRANDS:nike|PRICE_SENSITIVE:FALSE")
	f.products.ch <- ProductEvent{Products: []*store.Product{
		{ID: "adi", Brand: "Adidas", Name: "Ultraboost", Price: 180},
		{ID: "nik", Brand: "Nike", Name: "Air Max", Price: 180},
		{ID: "pum", Brand: "Puma", Name: "Nike Tribute", Price: 180},
	}}
	waitUpdate(t, f.ctrl.Updates())

	f.orders.ch <- OrderEvent{Orders: []*store.Order{
		{ID: "o1", Status: store.OrderStatusDelivered,
			Items: []store.OrderItem{{ProductName: "Nike Air", Price: 150}}},
	}}

	update := waitUpdate(t, f.ctrl.Updates())
	require.NoError(t, update.Err)
	// Any product matching "nike" in brand or name ranks above
	// otherwise-equal non-Nike products.
	assert.Equal(t, []string{"nik", "pum", "adi"}, productIDs(update.Products))
}
