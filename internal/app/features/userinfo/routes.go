package userinfo

import "github.com/go-chi/chi/v5"

// Routes returns the router for /api/userinfo.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeUserInfo)
	return r
}
