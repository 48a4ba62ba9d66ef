package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-rental-booking.git/internal/apperr"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError: mapping seragam apperr -> HTTP. Error non-apperr tidak bocor
// detailnya ke client.
func writeError(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if errors.As(err, &e) {
		writeJSON(w, apperr.HTTPStatus(err), errBody{Code: e.Code, Message: e.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errBody{Code: "INTERNAL", Message: "terjadi kesalahan server"})
}
