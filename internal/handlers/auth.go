package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"PropertyManager/internal/auth"
)

const invalidCredentials = "Invalid credentials"

// ShowLoginPage отображает форму входа
func (h *Handler) ShowLoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", map[string]any{
		"Title": "Login",
		"Next":  safeNext(r.URL.Query().Get("next")),
	})
}

// HandleLogin обрабатывает POST-запрос входа.
// Неверный email и неверный пароль дают один и тот же ответ.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad form", http.StatusBadRequest)
		return
	}
	next := safeNext(r.FormValue("next"))

	user, err := h.gate.Authenticate(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if errors.Is(err, auth.ErrAuthentication) {
		h.render(w, r, http.StatusUnauthorized, "login", map[string]any{
			"Title":    "Login",
			"Error":    invalidCredentials,
			"Next":     next,
			"LoggedIn": false,
		})
		return
	}
	if err != nil {
		log.Printf("login: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.SetUserID(w, r, user.ID); err != nil {
		log.Printf("session save error: %v", err)
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	if next == "" {
		next = "/dashboard"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// HandleLogout удаляет сессию и возвращает на главную
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		log.Printf("session clear error: %v", err)
		http.Error(w, "Logout failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// safeNext пропускает только локальные пути, иначе "".
// Управляющие символы запрещены: браузер вырезает TAB/LF, и "/\t/host" становится "//host".
func safeNext(next string) string {
	if strings.ContainsFunc(next, unicode.IsControl) {
		return ""
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}
