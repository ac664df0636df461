package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soleshop/soleshop/store"
)

func productIDs(products []*store.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func TestScoreBrandAndPriceMatch(t *testing.T) {
	pref := Preference{FavoriteBrands: []string{"nike"}}
	product := &store.Product{Brand: "Nike", Name: "Air Max", Price: 120}

	// Brand match (+100) and premium price fit for a non-sensitive profile (+50).
	assert.Equal(t, 150, Score(product, pref))
}

func TestScoreNameMatchPriceSensitive(t *testing.T) {
	pref := Preference{FavoriteBrands: []string{"nike"}, PriceSensitive: true}
	product := &store.Product{Brand: "Adidas", Name: "Nike Edition", Price: 80}

	// Name match (+50) and cheap price fit for a sensitive profile (+50).
	assert.Equal(t, 100, Score(product, pref))
}

func TestScoreTokenHitsBrandAndName(t *testing.T) {
	pref := Preference{FavoriteBrands: []string{"nike"}, PriceSensitive: true}
	product := &store.Product{Brand: "Nike", Name: "Nike Jordan", Price: 200}

	// Both matches fire for the same token; price misses the sensitive fit.
	assert.Equal(t, 150, Score(product, pref))
}

func TestScoreTokensStack(t *testing.T) {
	pref := Preference{FavoriteBrands: []string{"nike", "jordan"}}
	product := &store.Product{Brand: "Nike Jordan", Name: "Jordan 1", Price: 150}

	// nike: brand +100. jordan: brand +100 and name +50. Price fit +50.
	assert.Equal(t, 300, Score(product, pref))
}

func TestRankOrdersByDescendingScore(t *testing.T) {
	pref := Preference{FavoriteBrands: []string{"nike"}}
	products := []*store.Product{
		{ID: "a", Brand: "Adidas", Name: "Samba", Price: 90},
		{ID: "b", Brand: "Nike", Name: "Air Max", Price: 120},
		{ID: "c", Brand: "Puma", Name: "Nike Style", Price: 120},
	}

	ranked := Rank(products, pref)
	assert.Equal(t, []string{"b", "c", "a"}, productIDs(ranked))
}

func TestRankZeroPreferencePreservesOrder(t *testing.T) {
	products := []*store.Product{
		{ID: "a", Brand: "Adidas", Price: 90},
		{ID: "b", Brand: "Nike", Price: 90},
		{ID: "c", Brand: "Puma", Price: 90},
	}

	ranked := Rank(products, Preference{})
	assert.Equal(t, []string{"a", "b", "c"}, productIDs(ranked))
}

func TestRankIsIdempotent(t *testing.T) {
	pref := Preference{FavoriteBrands: []string{"nike"}, PriceSensitive: true}
	products := []*store.Product{
		{ID: "a", Brand: "Adidas", Name: "Samba", Price: 90},
		{ID: "b", Brand: "Nike", Name: "Air Max", Price: 120},
		{ID: "c", Brand: "Puma", Name: "Nike Style", Price: 80},
		{ID: "d", Brand: "Nike", Name: "Pegasus", Price: 60},
	}

	once := Rank(products, pref)
	twice := Rank(once, pref)
	assert.Equal(t, productIDs(once), productIDs(twice))
}

func TestRankStableOnTies(t *testing.T) {
	pref := Preference{FavoriteBrands: []string{"nike"}}
	products := []*store.Product{
		{ID: "a", Brand: "Nike", Name: "One", Price: 120},
		{ID: "b", Brand: "Nike", Name: "Two", Price: 120},
		{ID: "c", Brand: "Nike", Name: "Three", Price: 120},
	}

	ranked := Rank(products, pref)
	assert.Equal(t, []string{"a", "b", "c"}, productIDs(ranked))
}

func TestRankDoesNotModifyInput(t *testing.T) {
	pref := Preference{FavoriteBrands: []string{"nike"}}
	products := []*store.Product{
		{ID: "a", Brand: "Adidas", Price: 90},
		{ID: "b", Brand: "Nike", Price: 120},
	}

	_ = Rank(products, pref)
	require.Equal(t, []string{"a", "b"}, productIDs(products))
}

func TestRankEmptyList(t *testing.T) {
	ranked := Rank(nil, Preference{FavoriteBrands: []string{"nike"}})
	assert.Empty(t, ranked)
}

func TestFilterMatchesNameOrBrand(t *testing.T) {
	products := []*store.Product{
		{ID: "a", Brand: "Nike", Name: "Air Max"},
		{ID: "b", Brand: "Adidas", Name: "Samba"},
		{ID: "c", Brand: "Puma", Name: "nike knockoff"},
	}

	filtered := Filter(products, "NIKE")
	assert.Equal(t, []string{"a", "c"}, productIDs(filtered))
}

func TestFilterBlankQueryPassesThrough(t *testing.T) {
	products := []*store.Product{{ID: "a"}, {ID: "b"}}
	assert.Equal(t, products, Filter(products, "   "))
}
