package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-events/internal/model"
)

// RegisterAdmin registers the moderation endpoints under /v1/admin. All
// routes require the ADMIN role.
func RegisterAdmin(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group("/v1/admin", authenticated(h, jwtSecret, model.RoleAdmin)...)

	g.GET("/events", h.Events.List)
	g.GET("/events/:id", h.Events.Get)
	g.POST("/events", h.Events.Create)
	g.PUT("/events/:id", h.Events.Update)
	g.DELETE("/events/:id", h.Events.Delete)
	g.GET("/events/:id/participants", h.Registrations.Participants)

	g.GET("/users", h.AdminUsers.List)
	g.GET("/users/:id", h.AdminUsers.Get)
	g.PUT("/users/:id/admin", h.AdminUsers.SetAdmin)
	g.PUT("/users/:id/active", h.AdminUsers.SetActive)

	g.GET("/announcements", h.Content.ListAll)
	g.POST("/announcements", h.Content.CreateAnnouncement)
	g.PUT("/announcements/:id", h.Content.UpdateAnnouncement)
	g.DELETE("/announcements/:id", h.Content.DeleteAnnouncement)
	g.PUT("/pages/:name", h.Content.UpsertPage)
}
