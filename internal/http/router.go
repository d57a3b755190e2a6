// Package http exposes the catalog, the session's cart and checkout, and placed orders as
// a JSON API.
package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

type RouterConfig struct {
	Catalog        catalog.Catalog
	Sessions       *session.Registry
	Orders         OrderReader
	Log            zerolog.Logger
	RequestTimeout time.Duration
	// Limiter may be nil to serve without rate limiting.
	Limiter *rate.Limiter
}

func NewRouter(cfg RouterConfig) http.Handler {
	products := NewProductHandler(cfg.Catalog, cfg.RequestTimeout)
	carts := NewCartHandler(cfg.Sessions, cfg.RequestTimeout)
	checkouts := NewCheckoutHandler(cfg.Sessions, cfg.RequestTimeout)
	orders := NewOrdersHandler(cfg.Orders, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(cfg.Log))
	r.Use(middleware.Recoverer)
	r.Use(RateLimit(cfg.Limiter))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", products.List)
		r.Get("/products/{id}", products.Get)
		r.Get("/categories", products.Categories)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", carts.GetCart)
				r.Delete("/", carts.ClearCart)
				r.Post("/items", carts.AddItem)
				r.Put("/items/{item_id}", carts.UpdateItem)
				r.Delete("/items/{item_id}", carts.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", checkouts.Get)
				r.Patch("/", checkouts.Patch)
				r.Get("/shipping-methods", checkouts.ShippingMethods)
				r.Get("/payment-methods", checkouts.PaymentMethods)
				r.Get("/countries", checkouts.Countries)
				r.Put("/shipping-address", checkouts.SetShippingAddress)
				r.Put("/billing-address", checkouts.SetBillingAddress)
				r.Put("/shipping-method", checkouts.SetShippingMethod)
				r.Put("/payment", checkouts.SetPayment)
				r.Post("/next", checkouts.Next)
				r.Post("/previous", checkouts.Previous)
				r.Post("/reset", checkouts.Reset)
				r.Post("/resume", checkouts.Resume)
				r.Post("/steps/{step}", checkouts.GoToStep)
				r.Post("/orders", checkouts.PlaceOrder)
			})

			r.Get("/orders", orders.List)
			r.Get("/orders/{id}", orders.Get)
		})
	})

	return otelhttp.NewHandler(r, "storefront.http")
}
