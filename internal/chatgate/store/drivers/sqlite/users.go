package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/domain"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/store"
)

type usersRepo struct {
	db *sql.DB
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, full_name, password_hash, disabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.FullName, u.PasswordHash,
		boolToInt(u.Disabled), u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	return mapConflict(err)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, full_name, password_hash, disabled, created_at, updated_at
		FROM users WHERE username = ?`, username)

	var u domain.User
	var disabled int
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&disabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Disabled = disabled != 0
	return u, nil
}

func (r *usersRepo) SetUserDisabled(ctx context.Context, username string, disabled bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET disabled = ?, updated_at = ? WHERE username = ?`,
		boolToInt(disabled), time.Now().UTC(), username,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
