package models

import (
	"strings"
	"time"
)

const RoleAdmin = "admin"

// User — запись из таблицы users.
// Пароль хранится только bcrypt-хэшем.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeEmail — в таком виде email хранится в базе и сравнивается при входе.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
