package handlers

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"PropertyManager/internal/auth"
	mw "PropertyManager/internal/middleware"
	"PropertyManager/internal/sessions"
)

const appName = "Property & Contracts Manager"

//go:embed templates/*.html
var templateFS embed.FS

// Store — то, что хендлерам нужно от базы.
type Store interface {
	mw.UserLoader
	CountProperties(ctx context.Context) (int, error)
	PingContext(ctx context.Context) error
}

// Handler держит зависимости HTTP-слоя; всё передаётся явно из cmd.
type Handler struct {
	gate     *auth.Gate
	sessions *sessions.Manager
	store    Store
	pages    map[string]*template.Template
}

func New(gate *auth.Gate, sm *sessions.Manager, store Store) (*Handler, error) {
	h := &Handler{
		gate:     gate,
		sessions: sm,
		store:    store,
		pages:    map[string]*template.Template{},
	}
	for _, name := range []string{"index", "login", "dashboard"} {
		t, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("handlers: parse %s template: %w", name, err)
		}
		h.pages[name] = t
	}
	return h, nil
}

/* ========= ВСПОМОГАТЕЛЬНОЕ ========= */

// render сам прокидывает .LoggedIn, .Flashes и .AppName во все шаблоны.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["AppName"] = appName
	if _, ok := data["LoggedIn"]; !ok {
		_, loggedIn := h.sessions.UserID(r)
		data["LoggedIn"] = loggedIn
	}

	// flashes до записи заголовков: Save выставляет Set-Cookie
	flashes, err := h.sessions.Flashes(w, r)
	if err != nil {
		log.Printf("session: read flashes: %v", err)
	}
	data["Flashes"] = flashes

	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "base", data); err != nil {
		log.Printf("template %s: %v", page, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func jsonResponse(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

/* ========= СТРАНИЦЫ ========= */

func (h *Handler) ShowIndexPage(w http.ResponseWriter, r *http.Request) {
	_, ok, err := mw.ResolveUser(h.sessions, h.store, r)
	if err != nil {
		log.Printf("auth: load session user: %v", err)
	}
	if ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, "index", map[string]any{
		"Title":    "Welcome",
		"LoggedIn": false,
	})
}

func (h *Handler) ShowDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := mw.CurrentUser(r.Context())
	n, err := h.store.CountProperties(r.Context())
	if err != nil {
		log.Printf("dashboard: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, "dashboard", map[string]any{
		"Title":         "Dashboard",
		"LoggedIn":      true,
		"User":          user,
		"PropertyCount": n,
	})
}

// Health — жива ли база.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.PingContext(ctx); err != nil {
		log.Printf("health: db ping: %v", err)
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
