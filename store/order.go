package store

// Order statuses. Orders move PENDING -> SHIPPING -> DELIVERED, or to
// CANCELLED from any non-terminal state.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusShipping  = "SHIPPING"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// IsValidOrderStatus reports whether s is one of the known order statuses.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusShipping, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a snapshot of a cart line at checkout time.
type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Quantity    int     `json:"quantity"`
	Size        int     `json:"size"`
	Color       string  `json:"color"`
}

// Order represents a placed order.
type Order struct {
	ID         string
	UserID     string
	Items      []OrderItem
	TotalPrice float64
	Status     string
	Address    string
	CreatedTs  int64
}

// FindOrder specifies the conditions for finding orders.
type FindOrder struct {
	ID     *string
	UserID *string
}

// UpdateOrder specifies the fields to update.
type UpdateOrder struct {
	ID     string
	Status *string
}
