package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RequireCompany rejects tokens that are not scoped to a company.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		companyID, ok := claims["company_id"].(string)
		if !ok || companyID == "" {
			response.Forbidden(w, "Company ID is required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
