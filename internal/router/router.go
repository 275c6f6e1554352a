package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marhaba-kitchen/storefront/internal/config"
	"github.com/marhaba-kitchen/storefront/internal/handler"
	mw "github.com/marhaba-kitchen/storefront/internal/middleware"
	"github.com/marhaba-kitchen/storefront/internal/service"
	"github.com/marhaba-kitchen/storefront/internal/store"
	"github.com/marhaba-kitchen/storefront/internal/ws"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, queries *store.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, // public storefront; admin auth is bearer-token
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Push channel (public: listeners filter events client-side)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	orderService := service.NewOrderService(pool, func(db store.DBTX) service.OrderStore {
		return store.New(db)
	}, cfg.UploadDir)

	orderHandler := handler.NewOrderHandler(orderService, queries, hub)
	shopHandler := handler.NewShopHandler(queries)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)

	r.Route("/api", func(r chi.Router) {
		// Public storefront routes
		authHandler.RegisterRoutes(r)
		shopHandler.RegisterPublicRoutes(r)
		orderHandler.RegisterPublicRoutes(r)

		// Admin routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			shopHandler.RegisterAdminRoutes(r)
			orderHandler.RegisterAdminRoutes(r)
		})
	})

	return r
}
