package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// RequireManager requires manager or owner role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, response.ErrInvalidToken)
			return
		}

		role, ok := claims["role"].(string)
		if !ok {
			response.HandleError(w, response.ErrInsufficientRole)
			return
		}

		if role != jwt.RoleManager && role != jwt.RoleOwner {
			response.HandleError(w, response.ErrInsufficientRole)
			return
		}

		next.ServeHTTP(w, r)
	})
}
