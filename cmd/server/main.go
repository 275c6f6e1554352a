package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marhaba-kitchen/storefront/internal/config"
	"github.com/marhaba-kitchen/storefront/internal/router"
	"github.com/marhaba-kitchen/storefront/internal/store"
	"github.com/marhaba-kitchen/storefront/internal/ws"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 2 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

func main() {
	cfg := config.Load()

	if err := store.Migrate(cfg.DatabaseURL); err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}
	logrus.Info("migrations applied")

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("failed to create connection pool: %v", err)
	}
	defer pool.Close()

	queries := store.New(pool)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			logrus.Fatalf("failed to hash admin password: %v", err)
		}
		if err := queries.UpsertAdmin(context.Background(), cfg.AdminEmail, string(hash)); err != nil {
			logrus.Fatalf("failed to ensure admin account: %v", err)
		}
	}

	hub := ws.NewHub()
	go hub.Run()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, queries, pool, hub),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logrus.Infof("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	<-done
	logrus.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("shutdown: %v", err)
	}
}
