package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/presence-ledger-go/internal/handler/http/response"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/jwt"
)

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := jwt.IdentityFromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		if !identity.IsAdmin() {
			response.Forbidden(w, "Admin privilege required", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
