package sqlite

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/soleshop/soleshop/store"
)

func (d *DB) CreateProduct(ctx context.Context, create *store.Product) (*store.Product, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	sizes, colors, err := marshalVariants(create)
	if err != nil {
		return nil, err
	}

	stmt := `INSERT INTO product (id, name, brand, price, description, image_url, sizes, colors, stock, created_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := d.db.ExecContext(ctx, stmt,
		create.ID, create.Name, create.Brand, create.Price, create.Description,
		create.ImageURL, sizes, colors, create.Stock, create.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create product")
	}
	return create, nil
}

func (d *DB) ListProducts(ctx context.Context, find *store.FindProduct) ([]*store.Product, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.Brand != nil {
		where, args = append(where, "brand = ?"), append(args, *find.Brand)
	}

	query := `SELECT id, name, brand, price, description, image_url, sizes, colors, stock, created_ts
		FROM product WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	if find.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}
	defer rows.Close()

	list := []*store.Product{}
	for rows.Next() {
		product := &store.Product{}
		var sizes, colors string
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Brand, &product.Price, &product.Description,
			&product.ImageURL, &sizes, &colors, &product.Stock, &product.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan product")
		}
		if err := unmarshalVariants(product, sizes, colors); err != nil {
			return nil, err
		}
		list = append(list, product)
	}
	return list, rows.Err()
}

func (d *DB) UpdateProduct(ctx context.Context, update *store.Product) error {
	sizes, colors, err := marshalVariants(update)
	if err != nil {
		return err
	}

	stmt := `UPDATE product SET name = ?, brand = ?, price = ?, description = ?, image_url = ?,
		sizes = ?, colors = ?, stock = ? WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, stmt,
		update.Name, update.Brand, update.Price, update.Description, update.ImageURL,
		sizes, colors, update.Stock, update.ID,
	); err != nil {
		return errors.Wrap(err, "failed to update product")
	}
	return nil
}

func (d *DB) DeleteProduct(ctx context.Context, delete *store.DeleteProduct) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM product WHERE id = ?", delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete product")
	}
	return nil
}

func marshalVariants(p *store.Product) (string, string, error) {
	sizes := p.Sizes
	if sizes == nil {
		sizes = []int{}
	}
	colors := p.Colors
	if colors == nil {
		colors = []string{}
	}
	sizesJSON, err := json.Marshal(sizes)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to marshal sizes")
	}
	colorsJSON, err := json.Marshal(colors)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to marshal colors")
	}
	return string(sizesJSON), string(colorsJSON), nil
}

func unmarshalVariants(p *store.Product, sizes, colors string) error {
	if err := json.Unmarshal([]byte(sizes), &p.Sizes); err != nil {
		return errors.Wrap(err, "failed to unmarshal sizes")
	}
	if err := json.Unmarshal([]byte(colors), &p.Colors); err != nil {
		return errors.Wrap(err, "failed to unmarshal colors")
	}
	return nil
}
