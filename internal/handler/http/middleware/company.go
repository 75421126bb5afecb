package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RequireCompany rejects tokens that carry no company_id. Every payroll query is tenant scoped.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, response.ErrInvalidToken)
			return
		}

		companyID, ok := claims["company_id"].(string)
		if !ok || companyID == "" {
			response.HandleError(w, payroll.ErrCompanyRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
