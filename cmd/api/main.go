package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/spywords-backend/internal/config"
	"github.com/scythe504/spywords-backend/internal/database"
	"github.com/scythe504/spywords-backend/internal/database/migrations"
	"github.com/scythe504/spywords-backend/internal/game"
	"github.com/scythe504/spywords-backend/internal/logger"
	"github.com/scythe504/spywords-backend/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *database.Service
	if cfg.DatabaseURL != "" {
		if err := migrations.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
		if db, err = database.New(ctx, cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("unable to open database")
		}
		defer db.Close()
	} else {
		log.Warn().Msg("DB_URL not set, room records will not be persisted")
	}

	words, err := loadWordPool(ctx, cfg, db)
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.WordSource).Msg("unable to load word pool")
	}
	if err := game.ValidatePool(ctx, words); err != nil {
		log.Fatal().Err(err).Str("source", cfg.WordSource).Msg("word pool cannot fill a board")
	}

	var store game.Persistence
	deps := server.Deps{}
	if db != nil {
		store = db
		deps.Store = db
	}
	recorder := game.NewRecorder(store, cfg.PersistTimeout)
	deps.Registry = game.NewRegistry(recorder)
	deps.Hub = game.NewHub()
	deps.Dispatcher = game.NewDispatcher(deps.Registry, deps.Hub, words, recorder)

	srv := server.NewServer(cfg, deps)

	go func() {
		log.Info().Int("port", cfg.Port).Str("words", cfg.WordSource).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := deps.Hub.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("websocket connections did not drain in time")
	}
	recorder.Wait()

	log.Info().Msg("server exiting")
}

// loadWordPool picks the word source named by WORD_SOURCE. A postgres pool
// with an empty table is seeded from the built-in list.
func loadWordPool(ctx context.Context, cfg *config.Config, db *database.Service) (game.WordPool, error) {
	switch cfg.WordSource {
	case config.WordSourceCSV:
		return game.CsvPool(cfg.WordsFile)
	case config.WordSourcePostgres:
		if db == nil {
			return nil, errors.New("postgres word source needs DB_URL")
		}
		existing, err := db.Words(ctx)
		if err != nil {
			return nil, err
		}
		if len(existing) == 0 {
			defaults, err := game.DefaultPool()
			if err != nil {
				return nil, err
			}
			seed, _ := defaults.Words(ctx)
			n, err := db.AddWords(ctx, seed)
			if err != nil {
				return nil, err
			}
			log.Info().Int("words", n).Msg("seeded word table from the built-in list")
		}
		return db, nil
	default:
		return game.DefaultPool()
	}
}
