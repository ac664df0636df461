package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soleshop/soleshop/plugin/ai"
	"github.com/soleshop/soleshop/store"
)

// maxOrdersForInference caps how much purchase history feeds a single
// inference call. Callers pass orders newest first.
const maxOrdersForInference = 10

const inferencePromptTemplate = `Below is a customer's shoe purchase history:
%s
Analyze it and reply with PLAIN TEXT only, fields separated by |:
BRANDS:<comma-separated brand list>|PRICE_SENSITIVE:<TRUE or FALSE>
Example: BRANDS:nike,adidas|PRICE_SENSITIVE:FALSE`

// Analyzer derives a taste profile from order history via the generation
// service. It never returns an error: any failure degrades to the zero
// Preference so personalization silently switches off.
type Analyzer struct {
	generator ai.Generator
}

// NewAnalyzer creates an analyzer over the given generator.
func NewAnalyzer(generator ai.Generator) *Analyzer {
	return &Analyzer{generator: generator}
}

// Analyze infers a Preference from the user's orders, newest first.
// Cancelled orders must already be filtered out by the caller.
func (a *Analyzer) Analyze(ctx context.Context, orders []*store.Order) Preference {
	prompt := fmt.Sprintf(inferencePromptTemplate, buildTranscript(orders))

	response, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		slog.Debug("taste inference failed, degrading to no preference", "error", err)
		return Preference{}
	}
	return ParseResponse(response)
}

// buildTranscript flattens order line items into the "- name (price)" form
// the prompt template expects.
func buildTranscript(orders []*store.Order) string {
	if len(orders) > maxOrdersForInference {
		orders = orders[:maxOrdersForInference]
	}

	var sb strings.Builder
	for _, order := range orders {
		for _, item := range order.Items {
			fmt.Fprintf(&sb, "- %s (price: %.2f)\n", item.ProductName, item.Price)
		}
	}
	return sb.String()
}

// ParseResponse extracts a Preference from the generation output. Newlines
// are normalized to the | separator before splitting; each segment is matched
// against its field prefix case-insensitively. Malformed or missing segments
// yield the field's default, never an error.
func ParseResponse(text string) Preference {
	pref := Preference{}

	cleaned := strings.TrimSpace(strings.ReplaceAll(text, "\n", "|"))
	for _, part := range strings.Split(cleaned, "|") {
		trimmed := strings.TrimSpace(part)
		upper := strings.ToUpper(trimmed)
		switch {
		case strings.Contains(upper, "BRANDS:"):
			raw := valueAfterColon(trimmed)
			for _, brand := range strings.Split(raw, ",") {
				brand = strings.ToLower(strings.TrimSpace(brand))
				if brand != "" {
					pref.FavoriteBrands = append(pref.FavoriteBrands, brand)
				}
			}
		case strings.Contains(upper, "PRICE_SENSITIVE:"):
			pref.PriceSensitive = strings.EqualFold(strings.TrimSpace(valueAfterColon(trimmed)), "true")
		}
	}
	return pref
}

// valueAfterColon returns everything after the first colon, or "" when the
// segment has none.
func valueAfterColon(s string) string {
	if _, after, found := strings.Cut(s, ":"); found {
		return after
	}
	return ""
}
