package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-rental-booking.git/internal/cart"
)

type CartHandler struct {
	Carts *cart.Service
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.list)
	r.Post("/cart", h.add)
	r.Patch("/cart/{id}", h.updateQty)
	r.Delete("/cart/{id}", h.remove)
	r.Delete("/cart", h.clear)
}

func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	lines, err := h.Carts.List(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": lines})
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var in cart.AddInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Code: "INVALID_JSON", Message: "body bukan JSON valid"})
		return
	}
	id := identityFrom(r.Context())
	l, err := h.Carts.Add(r.Context(), id.UserID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

type updateQtyReq struct {
	Qty int `json:"qty"`
}

func (h *CartHandler) updateQty(w http.ResponseWriter, r *http.Request) {
	var req updateQtyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Code: "INVALID_JSON", Message: "body bukan JSON valid"})
		return
	}
	id := identityFrom(r.Context())
	l, err := h.Carts.UpdateQty(r.Context(), id.UserID, chi.URLParam(r, "id"), req.Qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	if err := h.Carts.Remove(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "item dihapus dari keranjang"})
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	if err := h.Carts.Clear(r.Context(), id.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "keranjang dikosongkan"})
}
