package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-rental-booking.git/internal/catalog"
)

type CatalogHandler struct {
	Catalog catalog.Store
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/assets", h.listAssets)
	r.Get("/assets/{id}", h.getAsset)
	r.Get("/services", h.listServices)
	r.Get("/services/{id}", h.getService)
}

func (h *CatalogHandler) listAssets(w http.ResponseWriter, r *http.Request) {
	as, err := h.Catalog.ListAssets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, as)
}

func (h *CatalogHandler) getAsset(w http.ResponseWriter, r *http.Request) {
	a, err := h.Catalog.GetAsset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *CatalogHandler) listServices(w http.ResponseWriter, r *http.Request) {
	ss, err := h.Catalog.ListServices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ss)
}

func (h *CatalogHandler) getService(w http.ResponseWriter, r *http.Request) {
	s, err := h.Catalog.GetService(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
