package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GoArmGo/Weplash/internal/handler"
)

const shutdownTimeout = 30 * time.Second

// runServer применяет миграции, готовит категории и обслуживает HTTP до отмены ctx
func (a *App) runServer(ctx context.Context) error {
	if err := a.Migrator.ApplyMigrations(a.cfg.DatabaseURL); err != nil {
		return err
	}
	if err := a.Photos.EnsureEditorialCategories(ctx); err != nil {
		return fmt.Errorf("не удалось подготовить редакционные категории: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", a.cfg.ServerPort),
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("ошибка при запуске сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received, stopping http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	a.logger.Info("http server stopped")
	return nil
}

func (a *App) router() http.Handler {
	gate := a.Gate
	account := a.AccountHandler
	photo := a.PhotoHandler

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handler.RequestLogger(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(a.cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", a.HealthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/account", func(r chi.Router) {
		r.Use(httprate.LimitByIP(a.cfg.RateLimitRequests, a.cfg.RateLimitWindow))

		r.Get("/", gate.Optional(account.Profile))
		r.Post("/sign-up", account.SignUp)
		r.Post("/sign-in", account.SignIn)
		r.Post("/kakao", account.KakaoSignIn)
		r.Post("/following", gate.Optional(account.Follow))
		r.Post("/interest", gate.Optional(account.Interest))
	})

	r.Route("/photo", func(r chi.Router) {
		r.Get("/", gate.Optional(photo.Feed))
		r.Get("/back", gate.Optional(photo.ColorFeed))
		r.Get("/search", photo.SearchHashTags)
		r.Get("/collections", gate.Optional(photo.Collections))
		r.Get("/related-photo/{photo_id}", photo.RelatedPhotos)
		r.Get("/related-collection/{photo_id}", photo.RelatedCollections)
		r.Get("/user-card/{user_name}", gate.Optional(photo.UserCard))
		r.Get("/{photo_id}", gate.Optional(photo.Details))
		r.Post("/{photo_id}/download", photo.Download)

		r.Post("/upload", gate.Optional(photo.Upload))
		r.Patch("/like", gate.Optional(photo.ToggleLike))
		r.Post("/add", gate.Optional(photo.ToggleCollectionPhoto))
		r.Post("/create", gate.Optional(photo.CreateCollection))
	})

	return r
}
