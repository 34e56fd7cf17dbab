package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/middleware"
)

// RouterConfig carries everything the HTTP surface is built from
type RouterConfig struct {
	Meals          *MealHandler
	Orders         *OrderHandler
	Health         *HealthHandler
	StaticDir      string
	StaticMount    string
	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter wires middleware and routes
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthchecker", cfg.Health.ServeHTTP)

		r.Route("/meals", func(r chi.Router) {
			r.Post("/", cfg.Meals.CreateMeal)
			r.Put("/", cfg.Meals.UpdateMeal)
			r.Get("/", cfg.Meals.ListMeals)
			r.Post("/upload/{id}", cfg.Meals.UploadImage)
			r.Get("/{id}", cfg.Meals.GetMeal)
			r.Delete("/{id}", cfg.Meals.DeleteMeal)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", cfg.Orders.CreateOrder)
			r.Get("/customer/{term}", cfg.Orders.SearchByCustomer)
			r.Get("/meal/{meal_id}", cfg.Orders.SearchByMeal)
			r.Get("/{id}", cfg.Orders.GetOrder)
		})
	})

	if cfg.StaticDir != "" {
		mount := "/" + strings.Trim(cfg.StaticMount, "/")
		fs := http.StripPrefix(mount, http.FileServer(http.Dir(cfg.StaticDir)))
		r.Handle(mount+"/*", fs)
	}

	return r
}
