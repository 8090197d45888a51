package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Pinger verifies the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(
	orders *OrderHandler,
	products *ProductHandler,
	customers *CustomerHandler,
	db Pinger,
	log *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if db != nil {
			if err := db.Ping(req.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, "unavailable", "database unreachable", nil)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orders.Create)
			r.Get("/", orders.List)
			r.Get("/shipping/methods", orders.ShippingMethods)
			r.Get("/shipping/quote", orders.ShippingQuote)
			r.Get("/{id}", orders.GetByID)
			r.Put("/{id}/pay", orders.Pay)
			r.Put("/{id}/cancel", orders.Cancel)
			r.Put("/{id}/ship", orders.Ship)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", products.Create)
			r.Get("/", products.GetAll)
			r.Get("/{id}", products.GetByID)
			r.Put("/{id}", products.Update)
			r.Get("/{id}/movements", products.Movements)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", customers.Create)
			r.Get("/", customers.GetAll)
			r.Get("/{id}", customers.GetByID)
			r.Get("/{id}/orders", customers.Orders)
		})
	})

	return r
}
