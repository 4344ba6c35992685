package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "filmbox/internal/adapters/http"
	"filmbox/internal/app"
	"filmbox/internal/catalog"
	"filmbox/internal/config"
	"filmbox/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var provider catalog.Provider
	if cfg.TMDB.APIKey != "" {
		provider = catalog.NewTMDB(catalog.TMDBOptions{
			APIKey:       cfg.TMDB.APIKey,
			BaseURL:      cfg.TMDB.BaseURL,
			ImageBaseURL: cfg.TMDB.ImageBaseURL,
			Language:     cfg.TMDB.Language,
			Pages:        cfg.TMDB.Pages,
			Timeout:      cfg.TMDB.Timeout,
		})
	} else {
		log.Warn().Str("module", "main").Msg("no TMDB api key configured, using builtin movie list")
		provider = &catalog.Static{Movies: catalog.BuiltinMovies(), Shuffle: true}
	}

	store := core.NewRoomStore()
	coord := app.NewCoordinator(store, provider, app.Options{
		SessionSize: cfg.SessionSize,
		IdleTTL:     cfg.RoomIdleTTL,
	})
	go coord.Run(ctx)

	r := router.SetupRouter(ctx, cfg, coord)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("FilmBox server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
