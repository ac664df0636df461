package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/soleshop/soleshop/store"
)

func (d *DB) UpsertUserPreference(ctx context.Context, upsert *store.UpsertUserPreference) (*store.UserPreference, error) {
	now := time.Now().Unix()

	stmt := `INSERT INTO user_preference (user_id, favorite_brands, price_sensitive, updated_ts)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			favorite_brands = EXCLUDED.favorite_brands,
			price_sensitive = EXCLUDED.price_sensitive,
			updated_ts = EXCLUDED.updated_ts
		RETURNING user_id, favorite_brands, price_sensitive, updated_ts`

	result := &store.UserPreference{}
	err := d.db.QueryRowContext(ctx, stmt,
		upsert.UserID, upsert.FavoriteBrands, upsert.PriceSensitive, now,
	).Scan(&result.UserID, &result.FavoriteBrands, &result.PriceSensitive, &result.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert user_preference")
	}
	return result, nil
}

func (d *DB) GetUserPreference(ctx context.Context, find *store.FindUserPreference) (*store.UserPreference, error) {
	if find.UserID == nil {
		return nil, errors.New("user_id is required")
	}

	query := `SELECT user_id, favorite_brands, price_sensitive, updated_ts FROM user_preference WHERE user_id = $1`
	result := &store.UserPreference{}
	err := d.db.QueryRowContext(ctx, query, *find.UserID).Scan(
		&result.UserID, &result.FavoriteBrands, &result.PriceSensitive, &result.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get user_preference")
	}
	return result, nil
}
