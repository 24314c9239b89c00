package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Agurato/filmbase/internal/business"
	"github.com/Agurato/filmbase/internal/config"
	"github.com/Agurato/filmbase/internal/infrastructure"
	"github.com/Agurato/filmbase/internal/logging"
	"github.com/Agurato/filmbase/internal/service/server"
)

// store is implemented by every storage backend
type store interface {
	business.FilmStorer
	business.FilmDirectorStorer
	business.DirectorStorer
	io.Closer
}

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Could not open database")
	}
	defer db.Close()

	fp := business.NewPaginater(cfg.API.ItemsPerPage, cfg.API.MaxPageSize)
	fm := business.NewFilmManager(db, db, fp)
	dm := business.NewDirectorManager(db, db)

	filmHandler := server.NewFilmHandler(fm, cfg.API.MaxUploadSize)
	directorHandler := server.NewDirectorHandler(dm)

	gin.SetMode(cfg.HTTP.Mode)
	router, err := server.NewServer(filmHandler, directorHandler)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create server")
	}

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: router,
	}
	go func() {
		log.Info().Str("address", srv.Addr).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Could not shut down server gracefully")
	}
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store, error) {
	switch cfg.Driver {
	case config.DriverMongoDB:
		return infrastructure.NewMongoDB(ctx, cfg.MongoURI(), cfg.Name)
	case config.DriverSQLite:
		return infrastructure.NewSQLite(cfg.SQLitePath)
	case config.DriverMemory:
		return infrastructure.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
