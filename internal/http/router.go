package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the storefront's HTTP surface.
func NewRouter(
	cartHandler *CartHandler,
	productHandler *ProductHandler,
	addressHandler *AddressHandler,
	checkoutHandler *CheckoutHandler,
	requestTimeout time.Duration,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(AuthMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/{id}", productHandler.GetProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", addressHandler.ListAddresses)
			r.Post("/", addressHandler.CreateAddress)
			r.Put("/{id}", addressHandler.UpdateAddress)
			r.Delete("/{id}", addressHandler.DeleteAddress)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/quote", checkoutHandler.Quote)
			r.Post("/cod", checkoutHandler.SubmitCOD)
			r.Route("/payment", func(r chi.Router) {
				r.Post("/initiate", checkoutHandler.InitiatePayment)
				r.Post("/complete", checkoutHandler.CompletePayment)
				r.Post("/fail", checkoutHandler.FailPayment)
				r.Post("/cancel", checkoutHandler.CancelPayment)
			})
		})
	})

	return r
}
