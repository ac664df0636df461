package catalog

import (
	"sort"
	"strings"

	"github.com/soleshop/soleshop/store"
)

// Scoring weights. A brand-token match on the product's brand is worth more
// than one on its name, and both can fire for the same token.
const (
	brandMatchScore = 100
	nameMatchScore  = 50
	priceFitScore   = 50

	// priceThreshold splits "cheap" from "premium", in catalog currency units.
	priceThreshold = 100.0
)

// Rank orders products by descending fit to pref. The sort is stable: equal
// scores keep their original relative order, so a zero-value preference
// returns the input order unchanged. The input slice is not modified.
func Rank(products []*store.Product, pref Preference) []*store.Product {
	ranked := make([]*store.Product, len(products))
	copy(ranked, products)

	sort.SliceStable(ranked, func(i, j int) bool {
		return Score(ranked[i], pref) > Score(ranked[j], pref)
	})
	return ranked
}

// Score computes the preference-fit score for a single product.
func Score(product *store.Product, pref Preference) int {
	score := 0
	brand := strings.ToLower(product.Brand)
	name := strings.ToLower(product.Name)

	for _, token := range pref.FavoriteBrands {
		if strings.Contains(brand, token) {
			score += brandMatchScore
		}
		if strings.Contains(name, token) {
			score += nameMatchScore
		}
	}

	if pref.PriceSensitive && product.Price < priceThreshold {
		score += priceFitScore
	} else if !pref.PriceSensitive && product.Price >= priceThreshold {
		score += priceFitScore
	}

	return score
}

// Filter returns the products whose name or brand contains query,
// case-insensitively. A blank query passes everything through.
func Filter(products []*store.Product, query string) []*store.Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return products
	}
	query = strings.ToLower(query)

	filtered := []*store.Product{}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Brand), query) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
