package app

import (
	"context"
	"fmt"
	"log"

	"meshsync/internal/config"
	"meshsync/internal/meshstore"
	"meshsync/internal/relay"
	"meshsync/internal/server"
)

type App struct {
	server *server.Server
	store  *meshstore.CachedStore
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Dependencies
	store, err := meshstore.Open(cfg.Mesh.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh store: %w", err)
	}
	hub := relay.NewHub(log.Default())
	meshHandler := relay.NewMeshHandler(store)

	// Routing & Server
	mux := server.NewMux(hub, meshHandler)
	srv := server.New(cfg.Port, mux)

	return &App{
		server: srv,
		store:  store,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

// Shutdown stops the server first so no handler reads from a closed store.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.store.Close(); cerr != nil {
		log.Printf("Failed to close mesh store: %v", cerr)
		if err == nil {
			err = cerr
		}
	}
	return err
}
