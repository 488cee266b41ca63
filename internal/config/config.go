package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"PropertyManager/internal/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	StoreCookie = "cookie"
	StoreRedis  = "redis"

	devSessionSecret = "dev-insecure-secret-change-me-now"
)

// Admin — учётка администратора, которую заводим в пустой базе.
type Admin struct {
	Email    string
	Password string
}

// Config — всё, что процесс берёт из окружения при старте.
// Создаётся один раз в cmd и дальше передаётся явно.
type Config struct {
	Host string
	Port string

	DBDriver    string
	DatabaseURL string

	SessionSecret string
	SessionMaxAge int // секунды
	SecureCookies bool
	SessionStore  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Admin Admin
}

// Addr — host:port для http.Server.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Load читает окружение. Ошибки возвращаются наверх, сам пакет процесс не роняет.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(env func(string) string) (Config, error) {
	get := func(k, def string) string {
		if v := strings.TrimSpace(env(k)); v != "" {
			return v
		}
		return def
	}

	c := Config{
		Host:          get("HOST", "127.0.0.1"),
		Port:          get("PORT", "5000"),
		DBDriver:      strings.ToLower(get("DB_DRIVER", DriverSQLite)),
		SessionSecret: get("SESSION_SECRET", get("SECRET_KEY", "")),
		SecureCookies: env("APP_HTTPS") == "1",
		SessionStore:  strings.ToLower(get("SESSION_STORE", StoreCookie)),
		RedisAddr:     get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: env("REDIS_PASSWORD"),
		Admin: Admin{
			Email:    models.NormalizeEmail(get("ADMIN_EMAIL", "admin@example.com")),
			Password: env("ADMIN_PASSWORD"),
		},
	}
	if c.Admin.Password == "" {
		c.Admin.Password = "admin123"
	}

	if _, err := strconv.Atoi(c.Port); err != nil {
		return Config{}, fmt.Errorf("config: PORT %q is not a number", c.Port)
	}

	maxAge, err := strconv.Atoi(get("SESSION_MAX_AGE", strconv.Itoa(7*24*60*60)))
	if err != nil {
		return Config{}, fmt.Errorf("config: SESSION_MAX_AGE: %w", err)
	}
	c.SessionMaxAge = maxAge

	redisDB, err := strconv.Atoi(get("REDIS_DB", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("config: REDIS_DB: %w", err)
	}
	c.RedisDB = redisDB

	switch c.DBDriver {
	case DriverSQLite:
		c.DatabaseURL = get("DATABASE_URL", "property_manager.db")
	case DriverPostgres:
		c.DatabaseURL = get("DATABASE_URL", get("POSTGRES_DSN", postgresDSN(get)))
	default:
		return Config{}, fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}

	switch c.SessionStore {
	case StoreCookie, StoreRedis:
	default:
		return Config{}, fmt.Errorf("config: unknown SESSION_STORE %q", c.SessionStore)
	}

	if c.Admin.Email == "" {
		return Config{}, errors.New("config: ADMIN_EMAIL is empty")
	}

	if c.SessionSecret == "" {
		// локально можно, в проде секрет обязателен
		log.Println("config: SESSION_SECRET is not set, using an insecure development secret")
		c.SessionSecret = devSessionSecret
	}
	return c, nil
}

// postgresDSN собирает lib/pq key=value из отдельных переменных.
func postgresDSN(get func(k, def string) string) string {
	parts := []string{
		"host=" + get("POSTGRES_HOST", "127.0.0.1"),
		"port=" + get("POSTGRES_PORT", "5432"),
		"user=" + get("POSTGRES_USER", "postgres"),
		"dbname=" + get("POSTGRES_DB", "property_manager"),
		"sslmode=" + get("POSTGRES_SSLMODE", "disable"),
	}
	if pass := get("POSTGRES_PASSWORD", ""); pass != "" {
		parts = append(parts, "password="+pass)
	}
	return strings.Join(parts, " ")
}
