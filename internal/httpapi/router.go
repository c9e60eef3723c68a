// Package httpapi exposes the storefront over HTTP. Handlers translate
// between the JSON contract and the services; all business rules live
// one layer down.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/metrics"
)

type Handlers struct {
	Cart    *CartHandler
	Order   *OrderHandler
	Payment *PaymentHandler
	Admin   *AdminHandler
	Catalog *CatalogHandler
	Metrics *metrics.Metrics
}

func NewRouter(h Handlers, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(RequestLogger(log))
	r.Use(Identity)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.Catalog.List)
		r.Get("/products/{productID}", h.Catalog.Get)
		r.Get("/categories", h.Catalog.Categories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Post("/add", h.Cart.AddItem)
			r.Put("/update/{productID}", h.Cart.UpdateQuantity)
			r.Delete("/remove/{productID}", h.Cart.RemoveItem)
			r.Delete("/clear", h.Cart.Clear)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.Order.Create)
			r.Get("/", h.Order.List)
			r.Get("/track/{orderNumber}", h.Order.Track)
			r.Get("/{orderID}", h.Order.Get)
			r.Put("/{orderID}/cancel", h.Order.Cancel)
			r.Put("/{orderID}/return", h.Order.Return)
		})

		r.Route("/payment", func(r chi.Router) {
			r.Post("/create-order", h.Payment.CreateIntent)
			r.Post("/verify", h.Payment.VerifySignature)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/orders", h.Admin.ListOrders)
			r.Put("/orders/{orderID}", h.Admin.UpdateOrder)
		})
	})

	return r
}
