package handlers

import (
	"time"

	mw "PropertyManager/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes собирает роутер приложения.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	// базовые middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.RedirectSlashes) // /path/ -> /path

	r.Get("/", h.ShowIndexPage)
	r.Get("/healthz", h.Health)

	// ---------- Аутентификация ----------
	r.Get("/login", h.ShowLoginPage)
	r.Post("/login", h.HandleLogin)

	// ---------- Только с валидной сессией ----------
	r.Group(func(g chi.Router) {
		g.Use(mw.LoginRequired(h.sessions, h.store))

		g.Get("/dashboard", h.ShowDashboard)
		g.Get("/logout", h.HandleLogout)
		g.Post("/logout", h.HandleLogout)
	})

	return r
}
