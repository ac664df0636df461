package store

// CartItem represents one line in a user's cart.
// The (ProductID, Size, Color) triple is unique per user; adding the same
// triple again increments Quantity instead of inserting a new row.
type CartItem struct {
	ID          string
	UserID      string
	ProductID   string
	ProductName string
	Price       float64
	ImageURL    string
	Quantity    int
	Size        int
	Color       string
}

// FindCartItem specifies the conditions for finding cart items.
type FindCartItem struct {
	ID        *string
	UserID    *string
	ProductID *string
	Size      *int
	Color     *string
}

// UpdateCartItem specifies the fields to update.
type UpdateCartItem struct {
	ID       string
	Quantity *int
}

// DeleteCartItem specifies the cart item to delete, scoped to its owner.
type DeleteCartItem struct {
	ID     string
	UserID string
}
