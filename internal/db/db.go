package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound — запись не найдена.
var ErrNotFound = errors.New("db: not found")

//go:embed schema_sqlite.sql
var schemaSQLite string

//go:embed schema_postgres.sql
var schemaPostgres string

// DB — пул соединений плюс диалект, под который переписываются запросы.
type DB struct {
	*sql.DB
	driver string
}

// Open подключается к базе и проверяет соединение.
// driver: "sqlite" (modernc) или "postgres" (lib/pq).
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	switch driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open failed: %w", err)
	}

	if driver == "sqlite" {
		// один писатель, иначе SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(5)
	}
	conn.SetConnMaxLifetime(30 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("db: ping failed: %w", err)
	}

	log.Printf("db: connected (%s)", safeTarget(driver, dsn))
	return &DB{DB: conn, driver: driver}, nil
}

// Migrate создаёт таблицы, если их ещё нет.
func (d *DB) Migrate(ctx context.Context) error {
	schema := schemaPostgres
	if d.driver == "sqlite" {
		schema = schemaSQLite
	}
	if _, err := d.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("db: apply migrations: %w", err)
	}
	return nil
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// q переписывает $1, $2 ... в ?1, ?2 ... для sqlite.
func (d *DB) q(query string) string {
	if d.driver != "sqlite" {
		return query
	}
	return placeholderRe.ReplaceAllString(query, "?${1}")
}

// safeTarget — куда подключились, без пароля.
func safeTarget(driver, dsn string) string {
	if driver == "sqlite" {
		if i := strings.IndexByte(dsn, '?'); i >= 0 {
			dsn = dsn[:i]
		}
		return "sqlite " + dsn
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		converted, err := pq.ParseURL(dsn)
		if err != nil {
			return "postgres (DATABASE_URL provided)"
		}
		dsn = converted
	}

	var host, user, name string
	for _, kv := range strings.Fields(dsn) {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		v = strings.Trim(v, "'")
		switch k {
		case "host":
			host = v
		case "user":
			user = v
		case "dbname":
			name = v
		}
	}
	return fmt.Sprintf("postgres host=%s user=%s db=%s", host, user, name)
}
