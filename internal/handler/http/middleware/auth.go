package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified access token. It expects
// jwtauth.Verifier to run first.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		tokenType, ok := claims["type"].(string)
		if tokenType != "access" || !ok {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hfn)
}
