package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"PropertyManager/internal/auth"
	"PropertyManager/internal/config"
	"PropertyManager/internal/handlers"
	"PropertyManager/internal/sessions"

	gsessions "github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, store, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		sessionStore, closeStore, err := newSessionStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		h, err := handlers.New(auth.NewGate(store), sessions.NewManager(sessionStore), store)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           h.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("listening on %s", cfg.Addr())
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Println("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// newSessionStore — кука или Redis, по SESSION_STORE.
func newSessionStore(ctx context.Context, cfg config.Config) (gsessions.Store, func(), error) {
	if cfg.SessionStore != config.StoreRedis {
		return sessions.NewCookieStore(cfg.SessionSecret, cfg.SessionMaxAge, cfg.SecureCookies), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("session: redis ping %s: %w", cfg.RedisAddr, err)
	}
	log.Printf("session: using redis at %s", cfg.RedisAddr)
	return sessions.NewRedisStore(client, cfg.SessionSecret, cfg.SessionMaxAge, cfg.SecureCookies),
		func() { _ = client.Close() }, nil
}
