package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/coursehub/internal/config"
	"github.com/deppfellow/coursehub/internal/database"
	"github.com/deppfellow/coursehub/internal/handler"
	"github.com/deppfellow/coursehub/internal/logger"
	"github.com/deppfellow/coursehub/internal/repository"
	"github.com/deppfellow/coursehub/internal/router"
	"github.com/deppfellow/coursehub/internal/server"
	"github.com/deppfellow/coursehub/internal/service"
)

const DefaultContextTimeout = 30

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	if err := prepareStore(cfg, srv); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare document store")
	}

	repos := repository.NewRepositories(srv)
	services := service.NewServices(srv, repos)
	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers, services)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

// prepareStore migrates PostgreSQL or creates the MongoDB indexes. The
// local environment skips Postgres migrations so developers can manage
// the schema by hand.
func prepareStore(cfg *config.Config, srv *server.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	switch {
	case srv.Mongo != nil:
		return srv.Mongo.EnsureIndexes(ctx)
	case srv.DB != nil && cfg.Primary.Env != "local":
		return database.Migrate(ctx, srv.Logger, cfg)
	}
	return nil
}
