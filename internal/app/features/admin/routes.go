package admin

import "github.com/go-chi/chi/v5"

// Routes returns the admin API router, mounted at /api/admin behind
// RequireSignedIn and RequireAdmin.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ServeListUsers)
		r.Post("/", h.ServeCreateUser)
		r.Put("/{id}", h.ServeUpdateUser)
	})

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", h.ServeListGroups)
		r.Post("/", h.ServeCreateGroup)
		r.Put("/{id}", h.ServeUpdateGroup)
		r.Get("/{id}/members", h.ServeListMembers)
		r.Post("/{id}/members", h.ServeAddMember)
		r.Delete("/{id}/members/{userID}", h.ServeRemoveMember)
	})

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", h.ServeListDocuments)
		r.Post("/", h.ServeCreateDocument)
		r.Put("/{id}", h.ServeUpdateDocument)
	})

	return r
}
