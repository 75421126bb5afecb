package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	LogLevel       slog.Level
}

func NewRouter(JWTService jwt.Service, payrollHandler PayrollHandler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  opts.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.RequireCompany)
			r.Use(middleware.RequireManager)

			r.Route("/salaries", func(r chi.Router) {
				r.Get("/", payrollHandler.List)
				r.Post("/", payrollHandler.Create)
				r.Post("/calculate", payrollHandler.Calculate)
				r.Get("/filter/unpaid", payrollHandler.ListUnpaid)
				r.Put("/bulk/mark-paid", payrollHandler.BulkMarkPaid)

				r.Route("/working-days/{period}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetWorkingDays)
					r.Delete("/", payrollHandler.ClearWorkingDays)
				})

				r.Get("/id/{id}", payrollHandler.Get)
				r.Get("/{period}", payrollHandler.ListByPeriod)
				r.Put("/{id}", payrollHandler.Update)
				r.Put("/{id}/mark-paid", payrollHandler.MarkPaid)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})
	return r
}
