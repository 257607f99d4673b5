package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nidys-catering/api/internal/catalog"
	"github.com/nidys-catering/api/internal/config"
	"github.com/nidys-catering/api/internal/handler"
	"github.com/nidys-catering/api/internal/mailer"
	"github.com/nidys-catering/api/internal/media"
	mw "github.com/nidys-catering/api/internal/middleware"
	"github.com/nidys-catering/api/internal/session"
	"github.com/nidys-catering/api/internal/store"
	"github.com/nidys-catering/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Storefront reads and ordering sessions are public; catalog, media, and
// order-history mutations require the admin token.
func New(cfg *config.Config, st store.Store, catalogSvc *catalog.Service, mediaMgr *media.Manager, registry *session.Registry, sender mailer.Sender, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // Vite dev server
			"https://nidysthaicatering.com.au",
			"https://www.nidysthaicatering.com.au",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(cfg.AdminPasswordHash, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket routes (order topic handles auth internally via query param)
	r.Get("/ws/media", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, ws.TopicMedia, w, r)
	})
	r.Get("/ws/catalog", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, ws.TopicCatalog, w, r)
	})
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, ws.TopicOrders, w, r)
	})

	// Storefront reads (public)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	catalogHandler.RegisterPublicRoutes(r)

	mediaHandler := handler.NewMediaHandler(mediaMgr, st)
	mediaHandler.RegisterPublicRoutes(r)

	// Ordering sessions (public; one per client tab)
	sessionHandler := handler.NewSessionHandler(registry, st, sender, catalogSvc.AppTitle, cfg.QuoteRecipient)
	sessionHandler.RegisterRoutes(r)

	// Admin routes (require authentication)
	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))
		r.Use(mw.RequireAdmin)

		catalogHandler.RegisterAdminRoutes(r)
		mediaHandler.RegisterAdminRoutes(r)

		orderHandler := handler.NewOrderHandler(st)
		orderHandler.RegisterRoutes(r)
	})

	log.Println("Router initialized with all handlers")
	return r
}
