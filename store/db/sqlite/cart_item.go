package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/soleshop/soleshop/store"
)

func (d *DB) CreateCartItem(ctx context.Context, create *store.CartItem) (*store.CartItem, error) {
	stmt := `INSERT INTO cart_item (id, user_id, product_id, product_name, price, image_url, quantity, size, color)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := d.db.ExecContext(ctx, stmt,
		create.ID, create.UserID, create.ProductID, create.ProductName,
		create.Price, create.ImageURL, create.Quantity, create.Size, create.Color,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create cart item")
	}
	return create, nil
}

func (d *DB) ListCartItems(ctx context.Context, find *store.FindCartItem) ([]*store.CartItem, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.UserID != nil {
		where, args = append(where, "user_id = ?"), append(args, *find.UserID)
	}
	if find.ProductID != nil {
		where, args = append(where, "product_id = ?"), append(args, *find.ProductID)
	}
	if find.Size != nil {
		where, args = append(where, "size = ?"), append(args, *find.Size)
	}
	if find.Color != nil {
		where, args = append(where, "color = ?"), append(args, *find.Color)
	}

	query := `SELECT id, user_id, product_id, product_name, price, image_url, quantity, size, color
		FROM cart_item WHERE ` + strings.Join(where, " AND ")
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list cart items")
	}
	defer rows.Close()

	list := []*store.CartItem{}
	for rows.Next() {
		item := &store.CartItem{}
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.ProductID, &item.ProductName,
			&item.Price, &item.ImageURL, &item.Quantity, &item.Size, &item.Color,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan cart item")
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func (d *DB) UpdateCartItem(ctx context.Context, update *store.UpdateCartItem) error {
	if update.Quantity == nil {
		return nil
	}
	if _, err := d.db.ExecContext(ctx,
		"UPDATE cart_item SET quantity = ? WHERE id = ?", *update.Quantity, update.ID,
	); err != nil {
		return errors.Wrap(err, "failed to update cart item")
	}
	return nil
}

func (d *DB) DeleteCartItem(ctx context.Context, delete *store.DeleteCartItem) error {
	if _, err := d.db.ExecContext(ctx,
		"DELETE FROM cart_item WHERE id = ? AND user_id = ?", delete.ID, delete.UserID,
	); err != nil {
		return errors.Wrap(err, "failed to delete cart item")
	}
	return nil
}
