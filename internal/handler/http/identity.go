package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/presence-ledger-go/internal/handler/http/response"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/jwt"
)

// requireIdentity resolves the caller or writes a 401 and reports false.
func requireIdentity(w http.ResponseWriter, r *http.Request) (jwt.Identity, bool) {
	identity, err := jwt.IdentityFromContext(r.Context())
	if err != nil {
		slog.Error("Failed to read token claims", "error", err)
		response.Unauthorized(w, "Invalid token")
		return jwt.Identity{}, false
	}
	return identity, true
}

// orClaim prefers the claim value and falls back to the body only when the token lacks it.
func orClaim(claim, body string) string {
	if claim != "" {
		return claim
	}
	return body
}
