package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/scythe504/spywords-backend/internal"
	"github.com/scythe504/spywords-backend/internal/config"
	"github.com/scythe504/spywords-backend/internal/game"
)

// RoomStore is the read side of persistence used by the HTTP routes.
type RoomStore interface {
	RecentRooms(ctx context.Context, limit int) ([]internal.RoomRecord, error)
	Health(ctx context.Context) map[string]string
}

type Deps struct {
	// Store is nil when persistence is disabled.
	Store      RoomStore
	Registry   *game.Registry
	Hub        *game.Hub
	Dispatcher *game.Dispatcher
}

type Server struct {
	cfg        *config.Config
	db         RoomStore
	registry   *game.Registry
	hub        *game.Hub
	dispatcher *game.Dispatcher
}

func New(cfg *config.Config, deps Deps) *Server {
	return &Server{
		cfg:        cfg,
		db:         deps.Store,
		registry:   deps.Registry,
		hub:        deps.Hub,
		dispatcher: deps.Dispatcher,
	}
}

func NewServer(cfg *config.Config, deps Deps) *http.Server {
	s := New(cfg, deps)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
