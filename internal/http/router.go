package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/foodnow-ng/payment-service-go/internal/webhook"
)

func NewRouter(h *Handler, wh *webhook.Handler, rl *webhook.RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", h.Health)

	r.Get("/webhooks/paystack", wh.Liveness)
	r.With(rl.Middleware).Post("/webhooks/paystack", wh.Receive)

	r.Route("/api/payments", func(r chi.Router) {
		r.Get("/{reference}", h.GetPayment)
		r.Post("/{reference}/verify", h.VerifyPayment)
	})

	return r
}
