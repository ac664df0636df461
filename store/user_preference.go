package store

// UserPreference holds a user's last inferred taste profile.
// FavoriteBrands is a comma-joined list of lowercase brand tokens; insertion
// order is preserved so the profile round-trips exactly.
type UserPreference struct {
	UserID         string
	FavoriteBrands string
	PriceSensitive bool
	UpdatedTs      int64
}

// FindUserPreference specifies the conditions for finding a user preference.
type FindUserPreference struct {
	UserID *string
}

// UpsertUserPreference specifies the data for upserting a user preference.
type UpsertUserPreference struct {
	UserID         string
	FavoriteBrands string
	PriceSensitive bool
}
