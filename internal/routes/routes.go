package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/omidrahimi/hawala_system/internal/handlers"
	"github.com/omidrahimi/hawala_system/internal/metrics"
	appmw "github.com/omidrahimi/hawala_system/internal/middleware"
)

func NewRoutes(h *handlers.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Post("/auth/login", h.LoginHandler)
	r.With(appmw.Authenticated).Get("/auth/me", h.MeHandler)

	r.Group(func(r chi.Router) {
		r.Use(appmw.Authenticated)

		r.Get("/balance", h.GetBalanceHandler)
		r.Get("/transactions", h.ListTransactionsHandler)
		r.Post("/transactions", h.CreateTransactionHandler)
		r.Get("/transactions/{code}", h.GetTransactionHandler)
		r.Patch("/transactions/{code}", h.EditTransactionHandler)
		r.Delete("/transactions/{code}", h.CancelTransactionHandler)
		r.Post("/transactions/{code}/pay", h.PayTransactionHandler)
		r.Post("/topups", h.SubmitTopUpHandler)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/agents", h.CreateAgentHandler)
			r.Get("/agents", h.ListAgentsHandler)
			r.Patch("/agents/{id}/active", h.SetAgentActiveHandler)
			r.Post("/transfers", h.AdminTransferHandler)
			r.Get("/topups", h.ListTopUpsHandler)
			r.Post("/topups/{id}/resolve", h.ResolveTopUpHandler)
		})
	})

	return r
}
