package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/soleshop/soleshop/store"
)

// maxOrdersInContext caps the order history included in the grounding
// context to keep the prompt small.
const maxOrdersInContext = 5

const systemFraming = "You are the professional AI assistant of SoleShop. " +
	"Your job: recommend products and help customers look up their orders.\n" +
	"Rules: answer briefly and warmly. If the information is not in the data " +
	"provided, say you don't know instead of making something up.\n\n"

// CatalogStore loads the data the assistant is grounded on.
type CatalogStore interface {
	ListProducts(ctx context.Context, find *store.FindProduct) ([]*store.Product, error)
	ListOrders(ctx context.Context, find *store.FindOrder) ([]*store.Order, error)
}

// ContextBuilder assembles the grounding context for one chat turn: the
// full catalog plus the caller's recent order history.
type ContextBuilder struct {
	store CatalogStore
}

func NewContextBuilder(st CatalogStore) *ContextBuilder {
	return &ContextBuilder{store: st}
}

// BuildContext renders the catalog and the user's most recent orders as a
// single grounding document. An empty userID renders a guest context with
// no order section.
func (b *ContextBuilder) BuildContext(ctx context.Context, userID string) (string, error) {
	var sb strings.Builder
	sb.WriteString(systemFraming)

	products, err := b.store.ListProducts(ctx, &store.FindProduct{})
	if err != nil {
		return "", fmt.Errorf("failed to list products: %w", err)
	}
	sb.WriteString("--- AVAILABLE PRODUCTS ---\n")
	for _, p := range products {
		fmt.Fprintf(&sb, "- ID: %s | Name: %s | Brand: %s | Price: $%.2f | Colors: %s | Sizes: %s\n",
			p.ID, p.Name, p.Brand, p.Price, strings.Join(p.Colors, ", "), joinSizes(p.Sizes))
	}

	if userID == "" {
		sb.WriteString("\n(Customer is not signed in)\n")
		return sb.String(), nil
	}

	orders, err := b.store.ListOrders(ctx, &store.FindOrder{UserID: &userID})
	if err != nil {
		return "", fmt.Errorf("failed to list orders: %w", err)
	}

	sb.WriteString("\n--- CUSTOMER ORDER HISTORY ---\n")
	if len(orders) == 0 {
		sb.WriteString("(Customer has no orders yet)\n")
		return sb.String(), nil
	}
	if len(orders) > maxOrdersInContext {
		orders = orders[:maxOrdersInContext]
	}
	for _, o := range orders {
		items := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			items = append(items, fmt.Sprintf("%s (Size %d, %s)", item.ProductName, item.Size, item.Color))
		}
		fmt.Fprintf(&sb, "- Order code: %s\n", orderCode(o.ID))
		fmt.Fprintf(&sb, "  + Placed: %s\n", time.Unix(o.CreatedTs, 0).Format("02/01/2006"))
		fmt.Fprintf(&sb, "  + Status: %s\n", humanizeStatus(o.Status))
		fmt.Fprintf(&sb, "  + Total: $%.2f\n", o.TotalPrice)
		fmt.Fprintf(&sb, "  + Items: %s\n", strings.Join(items, ", "))
		fmt.Fprintf(&sb, "  + Address: %s\n", o.Address)
	}
	return sb.String(), nil
}

// orderCode is the short code customers see: the last 6 characters of the
// order ID, uppercased.
func orderCode(id string) string {
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}

func humanizeStatus(status string) string {
	switch status {
	case store.OrderStatusPending:
		return "Awaiting confirmation"
	case store.OrderStatusShipping:
		return "Out for delivery"
	case store.OrderStatusDelivered:
		return "Delivered"
	case store.OrderStatusCancelled:
		return "Cancelled"
	}
	return status
}

func joinSizes(sizes []int) string {
	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return strings.Join(parts, ", ")
}
