package main

import (
	"context"
	"log"
	"net/http"

	"github.com/nidys-catering/api/internal/catalog"
	"github.com/nidys-catering/api/internal/config"
	"github.com/nidys-catering/api/internal/mailer"
	"github.com/nidys-catering/api/internal/media"
	"github.com/nidys-catering/api/internal/router"
	"github.com/nidys-catering/api/internal/session"
	"github.com/nidys-catering/api/internal/store"
	"github.com/nidys-catering/api/internal/store/memory"
	"github.com/nidys-catering/api/internal/store/postgres"
	"github.com/nidys-catering/api/internal/ws"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Postgres when configured, in-memory otherwise (dev/demo mode).
	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer pg.Close()
		st = pg
		log.Println("Connected to database")
	} else {
		st = memory.New()
		log.Println("DATABASE_URL not set, using in-memory store")
	}

	catalogSvc := catalog.New(st, store.DefaultDebounce, nil)
	defer catalogSvc.Close()

	mediaMgr := media.NewManager(st, media.NewTree(), catalogSvc)
	defer mediaMgr.Watch()()

	registry := session.NewRegistry(catalogSvc, st, nil)

	sender, err := mailer.NewSES(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to configure email: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()
	bridge := ws.NewBridge(st, hub)
	defer bridge.Close()

	r := router.New(cfg, st, catalogSvc, mediaMgr, registry, sender, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
