package documents

import "github.com/go-chi/chi/v5"

// Routes returns the router for the viewer API, mounted at
// /api/documents behind RequireSignedIn.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeDetail)
	r.Get("/{id}/structure", h.ServeStructure)
	r.Get("/{id}/images", h.ServeImages)
	r.Get("/{id}/images/{name}", h.ServeImage)
	r.Get("/{id}/pdf", h.ServePDF)
	return r
}
