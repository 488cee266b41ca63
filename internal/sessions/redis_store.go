package sessions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "propmgr:session:"

// RedisStore — серверные сессии: в куке только подписанный ID,
// значения лежат в Redis с TTL = MaxAge.
type RedisStore struct {
	client  redis.UniversalClient
	codecs  []securecookie.Codec
	serial  securecookie.GobEncoder
	maxAge  int
	Options *sessions.Options
}

var _ sessions.Store = (*RedisStore)(nil)

func NewRedisStore(client redis.UniversalClient, secret string, maxAge int, secure bool) *RedisStore {
	codecs := securecookie.CodecsFromPairs(keys(secret))
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(maxAge)
		}
	}
	return &RedisStore{
		client:  client,
		codecs:  codecs,
		maxAge:  maxAge,
		Options: options(maxAge, secure),
	}
}

func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New возвращает сессию из Redis по ID из куки, либо пустую новую.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, err
	}

	found, err := s.load(r.Context(), id, session)
	if err != nil {
		return session, err
	}
	if found {
		session.ID = id
		session.IsNew = false
	}
	return session, nil
}

func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	ctx := r.Context()

	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.client.Del(ctx, redisKeyPrefix+session.ID).Err(); err != nil {
				return fmt.Errorf("session: redis del: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	data, err := s.serial.Serialize(session.Values)
	if err != nil {
		return fmt.Errorf("session: encode values: %w", err)
	}

	ttl := session.Options.MaxAge
	if ttl == 0 {
		ttl = s.maxAge
	}
	if err := s.client.Set(ctx, redisKeyPrefix+session.ID, data, time.Duration(ttl)*time.Second).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("session: encode cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// Rotate удаляет текущую запись сессии; Save затем выдаст новый ID.
func (s *RedisStore) Rotate(r *http.Request, session *sessions.Session) error {
	if session.ID == "" {
		return nil
	}
	if err := s.client.Del(r.Context(), redisKeyPrefix+session.ID).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	session.ID = ""
	return nil
}

func (s *RedisStore) load(ctx context.Context, id string, session *sessions.Session) (bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session: redis get: %w", err)
	}
	if err := s.serial.Deserialize(data, &session.Values); err != nil {
		return false, fmt.Errorf("session: decode values: %w", err)
	}
	return true, nil
}
