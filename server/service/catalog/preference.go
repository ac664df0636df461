// Package catalog implements the personalized product feed: taste inference
// from order history, preference persistence, deterministic ranking, and the
// controller that merges the live catalog with search and ranking.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/soleshop/soleshop/store"
)

// DefaultStaleness is the age after which a stored preference is considered
// outdated and worth re-inferring.
const DefaultStaleness = 3 * 24 * time.Hour

// Preference is a user's inferred taste profile. The zero value means
// "no preference": ranking with it preserves the input order.
type Preference struct {
	// FavoriteBrands holds lowercase brand tokens in insertion order.
	FavoriteBrands []string
	PriceSensitive bool
}

// IsZero reports whether p carries no personalization signal.
func (p Preference) IsZero() bool {
	return len(p.FavoriteBrands) == 0 && !p.PriceSensitive
}

// Equal reports value equality. Brand order matters: the profile round-trips
// through storage in insertion order, so two profiles with reordered brands
// are treated as different.
func (p Preference) Equal(other Preference) bool {
	if p.PriceSensitive != other.PriceSensitive {
		return false
	}
	if len(p.FavoriteBrands) != len(other.FavoriteBrands) {
		return false
	}
	for i, brand := range p.FavoriteBrands {
		if brand != other.FavoriteBrands[i] {
			return false
		}
	}
	return true
}

// PreferenceStore is the narrow store surface the preference layer needs.
type PreferenceStore interface {
	UpsertUserPreference(ctx context.Context, upsert *store.UpsertUserPreference) (*store.UserPreference, error)
	GetUserPreference(ctx context.Context, find *store.FindUserPreference) (*store.UserPreference, error)
}

// Preferences persists and loads per-user taste profiles.
type Preferences struct {
	store PreferenceStore
	now   func() time.Time
}

// NewPreferences creates a preference accessor over the given store.
func NewPreferences(st PreferenceStore) *Preferences {
	return &Preferences{store: st, now: time.Now}
}

// Save overwrites the stored preference for userID and stamps it.
func (p *Preferences) Save(ctx context.Context, userID string, pref Preference) error {
	_, err := p.store.UpsertUserPreference(ctx, &store.UpsertUserPreference{
		UserID:         userID,
		FavoriteBrands: strings.Join(pref.FavoriteBrands, ","),
		PriceSensitive: pref.PriceSensitive,
	})
	return err
}

// Load returns the stored preference for userID. ok is false when nothing
// usable was ever recorded. A row with an empty brand list reads back as
// absent: the store cannot distinguish "never saved" from "saved with no
// brands", and we keep the source behavior of treating both as absent.
func (p *Preferences) Load(ctx context.Context, userID string) (Preference, bool, error) {
	row, err := p.store.GetUserPreference(ctx, &store.FindUserPreference{UserID: &userID})
	if err != nil {
		return Preference{}, false, err
	}
	if row == nil || row.FavoriteBrands == "" {
		return Preference{}, false, nil
	}

	brands := []string{}
	for _, b := range strings.Split(row.FavoriteBrands, ",") {
		if b != "" {
			brands = append(brands, b)
		}
	}
	return Preference{FavoriteBrands: brands, PriceSensitive: row.PriceSensitive}, true, nil
}

// IsStale reports whether the stored preference is older than maxAge.
// A preference that was never written is stale.
func (p *Preferences) IsStale(ctx context.Context, userID string, maxAge time.Duration) (bool, error) {
	row, err := p.store.GetUserPreference(ctx, &store.FindUserPreference{UserID: &userID})
	if err != nil {
		return false, err
	}
	if row == nil {
		return true, nil
	}
	return p.now().Unix()-row.UpdatedTs > int64(maxAge/time.Second), nil
}
