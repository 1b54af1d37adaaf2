package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hackerloum/mshikotap/internal/config"
)

// Router wires every endpoint. All routes except the health check sit behind
// the identity provider's bearer token.
func Router(h *Handlers, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(config.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(Auth(jwtSecret))

		r.Post("/signup", h.Signup)
		r.Get("/me", h.Me)
		r.Get("/me/ledger", h.MyLedger)
		r.Get("/me/referrals", h.MyReferrals)
		r.Get("/me/assignments", h.MyAssignments)
		r.Get("/me/withdrawals", h.MyWithdrawals)

		r.Get("/tasks", h.AvailableTasks)
		r.Post("/tasks/{id}/start", h.StartTask)
		r.Post("/assignments/{id}/proof", h.SubmitProof)
		r.Post("/withdrawals", h.RequestWithdrawal)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/stats", h.AdminStats)
			r.Get("/tasks", h.AdminListTasks)
			r.Post("/tasks", h.AdminCreateTask)
			r.Put("/tasks/{id}", h.AdminUpdateTask)
			r.Delete("/tasks/{id}", h.AdminDeleteTask)
			r.Get("/withdrawals", h.AdminPendingWithdrawals)
			r.Post("/withdrawals/{id}/resolve", h.AdminResolveWithdrawal)
			r.Post("/assignments/{id}/review", h.AdminReviewAssignment)
		})
	})

	return r
}
