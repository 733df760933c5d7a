package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-events/internal/model"
)

// RegisterMember registers endpoints for any signed-in user: their
// profile and their registrations.
func RegisterMember(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group("/v1", authenticated(h, jwtSecret, model.RoleAdmin, model.RoleMember)...)

	g.GET("/profile", h.Auth.Me)
	g.PUT("/profile", h.Profile.Update)
	g.DELETE("/profile", h.Profile.Delete)
	g.PUT("/profile/password", h.Profile.ChangePassword)
	g.POST("/profile/email", h.Profile.RequestEmailChange)

	g.POST("/registrations", h.Registrations.Register)
	g.GET("/registrations/:id", h.Registrations.Get)
	g.DELETE("/registrations/:id", h.Registrations.Cancel)
	g.GET("/my-registrations", h.Registrations.ListMine)
}
