package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/soleshop/soleshop/store"
)

func (d *DB) CreateOrder(ctx context.Context, create *store.Order, cartItemIDs []string) (*store.Order, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	items := create.Items
	if items == nil {
		items = []store.OrderItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal order items")
	}

	// Placing an order and emptying the cart must be atomic.
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt := `INSERT INTO "order" (id, user_id, items, total_price, status, address, created_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, stmt,
		create.ID, create.UserID, string(itemsJSON), create.TotalPrice, create.Status, create.Address, create.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create order")
	}

	for _, cartItemID := range cartItemIDs {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM cart_item WHERE id = $1 AND user_id = $2", cartItemID, create.UserID,
		); err != nil {
			return nil, errors.Wrap(err, "failed to clear cart item")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit order")
	}
	return create, nil
}

func (d *DB) ListOrders(ctx context.Context, find *store.FindOrder) ([]*store.Order, error) {
	where, args := []string{"TRUE"}, []any{}
	if find.ID != nil {
		args = append(args, *find.ID)
		where = append(where, fmt.Sprintf("id = %s", placeholder(len(args))))
	}
	if find.UserID != nil {
		args = append(args, *find.UserID)
		where = append(where, fmt.Sprintf("user_id = %s", placeholder(len(args))))
	}

	query := `SELECT id, user_id, items, total_price, status, address, created_ts
		FROM "order" WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}
	defer rows.Close()

	list := []*store.Order{}
	for rows.Next() {
		order := &store.Order{}
		var itemsJSON string
		if err := rows.Scan(
			&order.ID, &order.UserID, &itemsJSON, &order.TotalPrice, &order.Status, &order.Address, &order.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan order")
		}
		if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal order items")
		}
		list = append(list, order)
	}
	return list, rows.Err()
}

func (d *DB) UpdateOrder(ctx context.Context, update *store.UpdateOrder) error {
	if update.Status == nil {
		return nil
	}
	if _, err := d.db.ExecContext(ctx,
		`UPDATE "order" SET status = $1 WHERE id = $2`, *update.Status, update.ID,
	); err != nil {
		return errors.Wrap(err, "failed to update order")
	}
	return nil
}
