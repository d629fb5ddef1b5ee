package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/juliosincable/infourbi/internal/cambios"
	"github.com/juliosincable/infourbi/internal/config"
	"github.com/juliosincable/infourbi/internal/infra"
	"github.com/juliosincable/infourbi/internal/router"
	"github.com/juliosincable/infourbi/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	logFile := infra.ConfigureLogger(cfg)
	defer logFile.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var fb *infra.Firebase
	if cfg.UsesFirebase() {
		if fb, err = infra.NewFirebase(ctx, cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to initialise firebase")
		}
	}

	backend, err := infra.NewBackend(ctx, cfg, fb)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}

	// Redis is optional: without it the change feed stays in-process, the
	// selector memory and token revocations live in memory and no welcome
	// email is sent.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		if rdb, err = infra.NewRedis(ctx, cfg.RedisURL); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	}

	hub := cambios.NewHub(0)
	app := router.New(cfg, router.Deps{Backend: backend, Hub: hub, Redis: rdb, Firebase: fb})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Run(ctx)
	}()

	var pool *worker.Pool
	if rdb != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := cambios.NewRelay(rdb, hub).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("change relay stopped")
			}
		}()

		mailer := infra.NewMailer(cfg)
		if !mailer.Configurado() {
			log.Warn().Msg("SMTP_HOST not set, welcome emails are skipped without retry")
		}
		pool = worker.NewPool(rdb, map[string]worker.Handler{
			worker.JobBienvenida: worker.NewEmailWorker(mailer),
		})
		pool.Start(ctx, cfg.WorkerPoolSize)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      app.Engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE streams stay open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("driver", cfg.StoreDriver).Str("auth", cfg.AuthProvider).Msgf("infourbi listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("shutting down server…")
	// ends the open change streams so Shutdown does not wait on them
	hub.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	wg.Wait()
	if pool != nil {
		pool.Wait()
	}
	if err := backend.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to close store")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
