package httpx

import (
	"context"
	"net/http"

	"github.com/ariefcatur/go-rental-booking.git/internal/auth"
)

type ctxKey int

const ctxKeyIdentity ctxKey = iota

// RequireIdentity membaca identity hasil resolve gateway auth di depan
// (X-User-Id / X-User-Role). Service ini tidak memverifikasi token sendiri.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := auth.Identity{
			UserID: r.Header.Get("X-User-Id"),
			Role:   auth.Role(r.Header.Get("X-User-Role")),
		}
		if !id.Valid() {
			writeJSON(w, http.StatusUnauthorized, errBody{Code: "UNAUTHORIZED", Message: "identitas tidak dikenali"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyIdentity, id)))
	})
}

func identityFrom(ctx context.Context) auth.Identity {
	id, _ := ctx.Value(ctxKeyIdentity).(auth.Identity)
	return id
}
