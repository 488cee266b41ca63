package sessions

import (
	"crypto/sha256"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "pm_session"
	userIDKey   = "user_id"
)

// keys — из одного секрета делаем 2 ключа: подпись + шифрование.
func keys(secret string) (hashKey, blockKey []byte) {
	h := sha256.Sum256([]byte("auth:" + secret))
	e := sha256.Sum256([]byte("enc:" + secret))
	return h[:], e[:]
}

func options(maxAge int, secure bool) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure, // за HTTPS-прокси — true
	}
}

// NewCookieStore — вся сессия живёт в зашифрованной куке.
func NewCookieStore(secret string, maxAge int, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(keys(secret))
	store.Options = options(maxAge, secure)
	store.MaxAge(maxAge)
	return store
}

// Manager — работа с сессией пользователя поверх любого gorilla Store.
type Manager struct {
	store sessions.Store
}

func NewManager(store sessions.Store) *Manager {
	return &Manager{store: store}
}

// get всегда возвращает сессию: битая или чужая кука даёт пустую новую.
func (m *Manager) get(r *http.Request) *sessions.Session {
	s, err := m.store.Get(r, sessionName)
	if err != nil {
		log.Printf("session: discarding invalid session: %v", err)
	}
	if s == nil {
		s, _ = m.store.New(r, sessionName)
	}
	return s
}

// rotator — хранилище, которое умеет выдать сессии новый ID.
type rotator interface {
	Rotate(r *http.Request, s *sessions.Session) error
}

func (m *Manager) SetUserID(w http.ResponseWriter, r *http.Request, userID int64) error {
	s := m.get(r)
	// при входе серверная сессия получает новый ID, старая запись удаляется
	if rs, ok := m.store.(rotator); ok {
		if err := rs.Rotate(r, s); err != nil {
			return err
		}
	}
	s.Values[userIDKey] = userID
	return s.Save(r, w) // выставит Set-Cookie
}

func (m *Manager) UserID(r *http.Request) (int64, bool) {
	s := m.get(r)
	if v, ok := s.Values[userIDKey].(int64); ok {
		return v, true
	}
	return 0, false
}

// Clear удаляет сессию целиком (как session.clear()).
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	s.Values = map[interface{}]interface{}{}
	s.Options.MaxAge = -1
	return s.Save(r, w)
}

type Flash struct {
	Category string
	Message  string
}

func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) error {
	s := m.get(r)
	s.AddFlash(category + "|" + message)
	return s.Save(r, w)
}

// Flashes забирает накопленные сообщения и сохраняет сессию без них.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	s := m.get(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue
		}
		f := Flash{Message: str}
		if cat, msg, ok := strings.Cut(str, "|"); ok {
			f.Category, f.Message = cat, msg
		}
		out = append(out, f)
	}
	return out, s.Save(r, w)
}
