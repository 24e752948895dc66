package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	authapp "github.com/go-auth-gateway/internal/application/auth"
	"github.com/go-auth-gateway/internal/application/session"
	userapp "github.com/go-auth-gateway/internal/application/user"
	"github.com/go-auth-gateway/internal/config"
	"github.com/go-auth-gateway/internal/domain"
	"github.com/go-auth-gateway/internal/transport/http/handler"
	appmiddleware "github.com/go-auth-gateway/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider, cfg.JWT.CookieName)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	sessionSvc := session.NewService(deps.Directory, deps.JWTProvider, deps.Emitter)
	userSvc := userapp.NewService(deps.Directory, deps.JWTProvider, deps.Emitter, cfg.JWT.VerifyTTL, cfg.LinkBaseURL)
	authSvc := authapp.NewService(deps.Directory, deps.JWTProvider, deps.Emitter, cfg.JWT, cfg.LinkBaseURL)

	cookies := handler.Cookies{Name: cfg.JWT.CookieName, Secure: cfg.JWT.CookieSecure}

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(sessionSvc, userSvc, cookies)
	passwordH := handler.NewPasswordHandler(authSvc)
	emailH := handler.NewEmailHandler(authSvc)
	reactivateH := handler.NewReactivateHandler(authSvc)
	identityH := handler.NewIdentityHandler()
	accountH := handler.NewAccountHandler(userSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.Post("/auth/logout", authH.Logout)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/password/forgot", passwordH.Forgot)
		r.Post("/password/reset", passwordH.Reset)
		r.Get("/email/verify", emailH.Verify)
		r.Post("/email/resend", emailH.Resend)
		r.Post("/reactivate", reactivateH.Request)
		r.Get("/reactivate/confirm", reactivateH.Confirm)
		r.Post("/reactivate/confirm", reactivateH.Confirm)

		// Internal-only: never mounted in production. Consumers inside the
		// network perimeter use it to validate tokens locally.
		if !cfg.IsProduction() {
			configH := handler.NewConfigHandler(deps.JWTProvider, cfg.JWT.Secret)
			r.Get("/config/jwt", configH.JWT)
		}

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/verify", identityH.Echo)
			r.Post("/password/change", passwordH.Change)
			r.Delete("/account", accountH.Delete)

			r.With(appmiddleware.RequireRole(domain.RoleUser, domain.RoleAdmin)).
				Get("/me", identityH.Echo)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Delete("/admin/users/{id}", accountH.AdminDelete)
			})
		})
	})

	return r
}
