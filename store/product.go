package store

// Product represents a product in the catalog.
type Product struct {
	ID          string
	Name        string
	Brand       string
	Price       float64
	Description string
	ImageURL    string
	Sizes       []int
	Colors      []string
	Stock       int
	CreatedTs   int64
}

// FindProduct specifies the conditions for finding products.
type FindProduct struct {
	ID    *string
	Brand *string

	// Limit caps the number of results, newest first. Zero means no limit.
	Limit int
}

// DeleteProduct specifies the product to delete.
type DeleteProduct struct {
	ID string
}
