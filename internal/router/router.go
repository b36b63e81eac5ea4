package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberline-pos/api/internal/database"
	"github.com/emberline-pos/api/internal/enum"
	"github.com/emberline-pos/api/internal/handler"
	mw "github.com/emberline-pos/api/internal/middleware"
	"github.com/emberline-pos/api/internal/service"
	"github.com/emberline-pos/api/internal/session"
)

// New wires all handlers onto a chi router. pool and queries are nil when
// the server runs in demo mode; every handler that touches the store
// carries its own fallback.
func New(queries *database.Queries, pool *pgxpool.Pool, sessions *session.Store, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Typed-nil guard: interface fields must stay nil when there is no
	// database, so the services pick their demo fallbacks.
	var staffStore service.StaffStore
	var kitchenStore service.KitchenStore
	var mgmtStore handler.StaffStore
	var productStore handler.ProductStore
	var reportsStore handler.ReportsStore
	var beginner service.TxBeginner
	if queries != nil {
		staffStore = queries
		kitchenStore = queries
		mgmtStore = queries
		productStore = queries
		reportsStore = queries
	}
	if pool != nil {
		beginner = pool
	}

	authSvc := service.NewAuthService(staffStore, sessions, logger)
	orderSvc := service.NewOrderService(beginner, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, logger)
	kitchenSvc := service.NewKitchenService(kitchenStore, logger)

	authHandler := handler.NewAuthHandler(authSvc, logger)
	staffHandler := handler.NewStaffHandler(mgmtStore, logger)
	orderHandler := handler.NewOrderHandler(orderSvc, logger)
	kitchenHandler := handler.NewKitchenHandler(kitchenSvc, logger)
	productHandler := handler.NewProductHandler(productStore, logger)
	inventoryHandler := handler.NewInventoryHandler()
	reportsHandler := handler.NewReportsHandler(reportsStore, logger)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		authHandler.RegisterRoutes(r)
		kitchenHandler.RegisterRoutes(r)
		productHandler.RegisterRoutes(r)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(sessions))

			authHandler.RegisterProtectedRoutes(r)
			orderHandler.RegisterRoutes(r)
			inventoryHandler.RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequirePermission(enum.CapabilityInventory))
				inventoryHandler.RegisterReceiveRoutes(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(mw.RequirePermission(enum.CapabilityReports))
				reportsHandler.RegisterRoutes(r)
			})

			r.Route("/auth/staff", func(r chi.Router) {
				r.Use(mw.RequirePermission(enum.CapabilityStaff))
				staffHandler.RegisterRoutes(r)
			})
		})
	})

	return r
}
