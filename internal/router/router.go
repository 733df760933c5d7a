package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/club-events/internal/handler"
	"github.com/iliyamo/club-events/internal/middleware"
	"github.com/iliyamo/club-events/internal/model"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Auth          *handler.AuthHandler
	Profile       *handler.ProfileHandler
	Events        *handler.EventHandler
	Registrations *handler.RegistrationHandler
	AdminUsers    *handler.AdminUserHandler
	Content       *handler.ContentHandler
}

// Options carries the cross-cutting middleware. Nil entries are skipped.
type Options struct {
	Logger    *slog.Logger
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// New builds the echo instance with every route registered.
func New(db *sql.DB, h Handlers, jwtSecret string, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	if opts.Logger != nil {
		e.Use(middleware.RequestLogger(opts.Logger))
	}
	if opts.RateLimit != nil {
		e.Use(opts.RateLimit)
	}

	RegisterRoutes(e, db)
	RegisterAuth(e, h, jwtSecret)
	RegisterPublic(e, h.Events, h.Content, opts.Cache)
	RegisterMember(e, h, jwtSecret)
	RegisterAdmin(e, h, jwtSecret)
	return e
}

// RegisterRoutes registers the health check.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// authenticated is the middleware chain for signed-in routes: a valid
// access token, an account that is still active, and one of roles as
// stored on the account.
func authenticated(h Handlers, jwtSecret string, roles ...string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.ActiveAccount(h.Auth.Users),
		middleware.RequireRole(roles...),
	}
}

// RegisterAuth registers the token endpoints under /v1/auth. Logout
// accepts either a refresh token in the body or a bearer token, so it
// sits outside the JWT group.
func RegisterAuth(e *echo.Echo, h Handlers, jwtSecret string) {
	a := h.Auth
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)               // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // keeps the refresh token
	g.POST("/logout", a.Logout)
	g.GET("/verify-email", h.Profile.VerifyEmail) // link from the verification mail

	e.POST("/v1/logout", a.Logout)
	e.GET("/v1/me", a.Me, authenticated(h, jwtSecret, model.RoleAdmin, model.RoleMember)...)
}

// RegisterPublic registers unauthenticated browse endpoints. cache, when
// set, fronts the read-mostly listings.
func RegisterPublic(e *echo.Echo, ev *handler.EventHandler, ct *handler.ContentHandler, cache echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	if cache != nil {
		mw = append(mw, cache)
	}
	e.GET("/v1/events", ev.List, mw...)
	e.GET("/v1/events/search", ev.Search, mw...)
	e.GET("/v1/events/:id", ev.Get, mw...)
	// availability is never cached; it backs the "spots left" counter
	e.GET("/v1/events/:id/availability", ev.Availability)
	e.GET("/v1/announcements", ct.ListPublished, mw...)
	e.GET("/v1/pages/:name", ct.GetPage, mw...)
}
