package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-rental-booking.git/internal/auth"
	"github.com/ariefcatur/go-rental-booking.git/internal/booking"
	"github.com/ariefcatur/go-rental-booking.git/internal/redisx"
)

type BookingHandler struct {
	Bookings *booking.Service
	Redis    *redis.Client
}

func (h *BookingHandler) Register(r chi.Router) {
	r.Post("/bookings/checkout", h.checkout)
	r.Get("/bookings", h.list)
	r.Get("/bookings/{id}", h.get)
	r.Get("/bookings/{id}/status", h.getStatus)
	r.Patch("/bookings/{id}/approve", h.approve)
	r.Patch("/bookings/{id}/reject", h.reject)
	r.Patch("/bookings/{id}/cancel", h.cancel)
}

type checkoutReq struct {
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	Notes         string    `json:"notes"`
}

func (h *BookingHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Code: "INVALID_JSON", Message: "body bukan JSON valid"})
		return
	}
	id := identityFrom(r.Context())
	res, err := h.Bookings.Checkout(r.Context(), id, booking.CheckoutInput{
		Start: req.StartDatetime,
		End:   req.EndDatetime,
		Notes: req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(r, res.Booking)
	writeJSON(w, http.StatusCreated, res)
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	limit := atoiDefault(q.Get("limit"), 10)
	status := booking.Status(q.Get("status"))

	bs, total, err := h.Bookings.List(r.Context(), id, status, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  bs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (h *BookingHandler) get(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	b, err := h.Bookings.Get(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type statusCacheEntry struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

// getStatus: cache-first dari Redis, fallback DB lalu isi cache. Polling status
// oleh frontend tidak membebani Postgres. Entry cache menyimpan pemiliknya
// supaya cache hit tetap lewat cek kepemilikan.
func (h *BookingHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	bookingID := chi.URLParam(r, "id")

	key := fmt.Sprintf(redisx.KeyBookingStatus, bookingID)
	if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
		var e statusCacheEntry
		if json.Unmarshal([]byte(s), &e) == nil && (e.UserID == id.UserID || id.Role == auth.RoleAdmin) {
			writeJSON(w, http.StatusOK, map[string]string{"status": e.Status})
			return
		}
	}

	b, err := h.Bookings.Get(r.Context(), id, bookingID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(r, b)
	writeJSON(w, http.StatusOK, map[string]string{"status": string(b.Status)})
}

type decisionReq struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

func (h *BookingHandler) approve(w http.ResponseWriter, r *http.Request) {
	var req decisionReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	id := identityFrom(r.Context())
	b, err := h.Bookings.Approve(r.Context(), id, chi.URLParam(r, "id"), req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(r, b)
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) reject(w http.ResponseWriter, r *http.Request) {
	var req decisionReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	id := identityFrom(r.Context())
	b, err := h.Bookings.Reject(r.Context(), id, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(r, b)
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	b, err := h.Bookings.Cancel(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(r, b)
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) cacheStatus(r *http.Request, b *booking.Booking) {
	key := fmt.Sprintf(redisx.KeyBookingStatus, b.ID)
	body, _ := json.Marshal(statusCacheEntry{Status: string(b.Status), UserID: b.UserID})
	_ = h.Redis.Set(r.Context(), key, body, redisx.TTLStatusCache).Err()
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
