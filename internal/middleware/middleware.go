package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"

	"PropertyManager/internal/db"
	"PropertyManager/internal/models"
	"PropertyManager/internal/sessions"
)

type ctxKey struct{}

// UserLoader — найти пользователя сессии по ID.
type UserLoader interface {
	UserByID(ctx context.Context, id int64) (models.User, error)
}

// CurrentUser возвращает пользователя, которого положил LoginRequired.
func CurrentUser(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(models.User)
	return u, ok
}

func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// ResolveUser — пользователь текущей сессии, если он ещё существует в базе.
func ResolveUser(sm *sessions.Manager, users UserLoader, r *http.Request) (models.User, bool, error) {
	id, ok := sm.UserID(r)
	if !ok {
		return models.User{}, false, nil
	}
	u, err := users.UserByID(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	return u, true, nil
}

// LoginRequired — chi-совместимая мидлварь.
// Без валидной сессии: flash и редирект на /login?next=<path>.
func LoginRequired(sm *sessions.Manager, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok, err := ResolveUser(sm, users, r)
			if err != nil {
				log.Printf("auth: load session user: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if !ok {
				if err := sm.AddFlash(w, r, "warning", "Please log in first."); err != nil {
					log.Printf("session: save flash: %v", err)
				}
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
