package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/soleshop/soleshop/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	stmt := `INSERT INTO "user" (id, email, password_hash, full_name, role, avatar_url, created_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := d.db.ExecContext(ctx, stmt,
		create.ID, create.Email, create.PasswordHash, create.FullName, create.Role, create.AvatarURL, create.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	return create, nil
}

func (d *DB) ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error) {
	where, args := []string{"TRUE"}, []any{}
	if find.ID != nil {
		args = append(args, *find.ID)
		where = append(where, fmt.Sprintf("id = %s", placeholder(len(args))))
	}
	if find.Email != nil {
		args = append(args, *find.Email)
		where = append(where, fmt.Sprintf("email = %s", placeholder(len(args))))
	}
	if find.Role != nil {
		args = append(args, *find.Role)
		where = append(where, fmt.Sprintf("role = %s", placeholder(len(args))))
	}

	query := `SELECT id, email, password_hash, full_name, role, avatar_url, created_ts FROM "user"
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	list := []*store.User{}
	for rows.Next() {
		user := &store.User{}
		if err := rows.Scan(
			&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Role, &user.AvatarURL, &user.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan user")
		}
		list = append(list, user)
	}
	return list, rows.Err()
}

func (d *DB) UpdateUser(ctx context.Context, update *store.UpdateUser) (*store.User, error) {
	set, args := []string{}, []any{}
	if update.FullName != nil {
		args = append(args, *update.FullName)
		set = append(set, fmt.Sprintf("full_name = %s", placeholder(len(args))))
	}
	if update.AvatarURL != nil {
		args = append(args, *update.AvatarURL)
		set = append(set, fmt.Sprintf("avatar_url = %s", placeholder(len(args))))
	}
	if len(set) > 0 {
		args = append(args, update.ID)
		stmt := `UPDATE "user" SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
		if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
			return nil, errors.Wrap(err, "failed to update user")
		}
	}

	users, err := d.ListUsers(ctx, &store.FindUser{ID: &update.ID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, errors.Errorf("user %s not found", update.ID)
	}
	return users[0], nil
}
