package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-rental-booking.git/internal/apperr"
	"github.com/ariefcatur/go-rental-booking.git/internal/payment"
	"github.com/ariefcatur/go-rental-booking.git/internal/redisx"
)

type PaymentHandler struct {
	Payments *payment.Service
	Redis    *redis.Client
	Log      *zap.Logger
}

func (h *PaymentHandler) Register(r chi.Router) {
	r.Post("/payments/create/{bookingId}", h.create)
	r.Get("/payments/{id}", h.get)
	r.Get("/payments/{id}/status", h.checkStatus)
}

// RegisterPublic: endpoint tanpa identity — dipanggil server gateway, bukan user.
func (h *PaymentHandler) RegisterPublic(r chi.Router) {
	r.Post("/payments/notification", h.notification)
}

type createPaymentReq struct {
	Method string `json:"method"`
}

func (h *PaymentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createPaymentReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	id := identityFrom(r.Context())
	intent, err := h.Payments.CreateIntent(r.Context(), id, chi.URLParam(r, "bookingId"), payment.ParseMethod(req.Method))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, intent)
}

func (h *PaymentHandler) get(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	p, err := h.Payments.Get(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) checkStatus(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	sc, err := h.Payments.CheckStatus(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

type notificationReq struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}

// notification: webhook gateway. Selalu balas 200 kecuali body rusak, supaya
// gateway berhenti retry; keputusan state sepenuhnya di Reconcile (CAS di DB).
// Lock Redis per reference meredam delivery paralel, tapi bukan satu-satunya
// pagar — CAS tetap menang kalau lock expired di tengah jalan.
func (h *PaymentHandler) notification(w http.ResponseWriter, r *http.Request) {
	var req notificationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Code: "INVALID_JSON", Message: "payload notifikasi tidak valid"})
		return
	}

	lockKey := fmt.Sprintf(redisx.KeyReconcileLock, req.OrderID)
	ok, err := redisx.AcquireLock(r.Context(), h.Redis, lockKey, redisx.TTLReconcileLock)
	if err != nil {
		h.Log.Warn("reconcile lock unavailable, proceeding on CAS only",
			zap.String("reference_no", req.OrderID), zap.Error(err))
	} else if !ok {
		// Delivery lain sedang memproses reference ini; gateway akan re-deliver
		// kalau memang masih perlu.
		writeJSON(w, http.StatusOK, map[string]string{"status": "in_progress"})
		return
	} else {
		defer redisx.ReleaseLock(r.Context(), h.Redis, lockKey)
	}

	// Re-verify ke gateway: status dari payload tidak dipercaya begitu saja.
	trxStatus, fraudStatus := req.TransactionStatus, req.FraudStatus
	gs, err := h.Payments.VerifyWithGateway(r.Context(), req.OrderID)
	switch {
	case err == nil:
		trxStatus, fraudStatus = gs.TransactionStatus, gs.FraudStatus
	case apperr.IsKind(err, apperr.KindNotFound):
		// Gateway belum mengenal transaksinya (notif datang lebih cepat dari
		// propagasi); biarkan delivery berikutnya yang memproses.
		writeJSON(w, http.StatusOK, map[string]string{"status": "not_yet_processed"})
		return
	default:
		h.Log.Warn("gateway verification failed, falling back to payload status",
			zap.String("reference_no", req.OrderID), zap.Error(err))
	}

	res, err := h.Payments.Reconcile(r.Context(), req.OrderID, trxStatus, fraudStatus)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
