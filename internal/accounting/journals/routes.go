package journals

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the journal endpoints. Entries have no update or
// delete route; corrections go through reverse.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/reverse", h.Reverse)
}
