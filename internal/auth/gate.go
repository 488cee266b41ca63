package auth

import (
	"context"
	"errors"
	"fmt"

	"PropertyManager/internal/db"
	"PropertyManager/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// ErrAuthentication — неверный email или пароль. Какое именно поле
// не совпало, наружу не сообщается.
var ErrAuthentication = errors.New("invalid credentials")

// UserFinder — то, что нужно шлюзу от хранилища.
type UserFinder interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
}

// Gate проверяет попытку входа.
type Gate struct {
	users     UserFinder
	dummyHash []byte
}

func NewGate(users UserFinder) *Gate {
	// неизвестный email сравнивается с заглушкой: на любой попытке ровно один bcrypt
	h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("auth: dummy hash: %v", err))
	}
	return &Gate{users: users, dummyHash: h}
}

// Authenticate возвращает пользователя при совпадении пары email/пароль,
// иначе ErrAuthentication. Ошибки хранилища возвращаются отдельно.
func (g *Gate) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		_ = bcrypt.CompareHashAndPassword(g.dummyHash, []byte(password))
		return models.User{}, ErrAuthentication
	}

	u, err := g.users.UserByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(g.dummyHash, []byte(password))
		return models.User{}, ErrAuthentication
	}
	if err != nil {
		return models.User{}, fmt.Errorf("auth: lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthentication
	}
	return u, nil
}
