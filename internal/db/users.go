package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"PropertyManager/internal/models"

	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, email, password_hash, role, created_at`

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("db: scan user: %w", err)
	}
	return u, nil
}

// UserByEmail ищет пользователя по email.
func (d *DB) UserByEmail(ctx context.Context, email string) (models.User, error) {
	row := d.QueryRowContext(ctx, d.q(`SELECT `+userColumns+` FROM users WHERE email = $1`), models.NormalizeEmail(email))
	return scanUser(row)
}

func (d *DB) UserByID(ctx context.Context, id int64) (models.User, error) {
	row := d.QueryRowContext(ctx, d.q(`SELECT `+userColumns+` FROM users WHERE id = $1`), id)
	return scanUser(row)
}

// CreateUser хэширует пароль и вставляет запись.
func (d *DB) CreateUser(ctx context.Context, email, password, role string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("db: hash password: %w", err)
	}
	u := models.User{
		Email:        models.NormalizeEmail(email),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	err = d.QueryRowContext(ctx, d.q(`
		INSERT INTO users (email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`),
		u.Email, u.PasswordHash, u.Role, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("db: insert user: %w", err)
	}
	return u, nil
}

// EnsureAdmin заводит администратора, только если таблица users пуста.
// Возвращает true, если запись была создана.
func (d *DB) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	var n int
	if err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return false, fmt.Errorf("db: count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := d.CreateUser(ctx, email, password, models.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

// SetPassword меняет пароль существующего пользователя.
func (d *DB) SetPassword(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("db: hash password: %w", err)
	}
	res, err := d.ExecContext(ctx, d.q(`UPDATE users SET password_hash = $1 WHERE email = $2`),
		string(hash), models.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("db: update password: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
