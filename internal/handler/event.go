package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/repository"
	"github.com/iliyamo/club-events/internal/service"
)

// EventHandler serves the public event catalogue and its admin CRUD.
type EventHandler struct {
	Events *service.EventService
}

func NewEventHandler(s *service.EventService) *EventHandler { return &EventHandler{Events: s} }

type eventReq struct {
	Title                string    `json:"title" validate:"required,max=255"`
	Description          string    `json:"description" validate:"max=10000"`
	EventDate            time.Time `json:"event_date" validate:"required"`
	EventTime            *string   `json:"event_time" validate:"omitempty,max=64"`
	Location             string    `json:"location" validate:"required,max=255"`
	Capacity             int       `json:"capacity" validate:"required,gt=0"`
	RegistrationDeadline time.Time `json:"registration_deadline" validate:"required"`
	ImageURL             *string   `json:"image_url" validate:"omitempty,url,max=512"`
}

func (r eventReq) input() service.EventInput {
	return service.EventInput{
		Title:                r.Title,
		Description:          r.Description,
		EventDate:            r.EventDate,
		EventTime:            r.EventTime,
		Location:             r.Location,
		Capacity:             r.Capacity,
		RegistrationDeadline: r.RegistrationDeadline,
		ImageURL:             r.ImageURL,
	}
}

// eventPatchReq is the body of an update; absent fields are left as they are.
type eventPatchReq struct {
	Title                *string    `json:"title" validate:"omitempty,max=255"`
	Description          *string    `json:"description" validate:"omitempty,max=10000"`
	EventDate            *time.Time `json:"event_date"`
	EventTime            *string    `json:"event_time" validate:"omitempty,max=64"`
	Location             *string    `json:"location" validate:"omitempty,max=255"`
	Capacity             *int       `json:"capacity" validate:"omitempty,gt=0"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	ImageURL             *string    `json:"image_url" validate:"omitempty,url,max=512"`
	IsActive             *bool      `json:"is_active"`
}

func (r eventPatchReq) patch() service.EventPatch {
	return service.EventPatch{
		Title:                r.Title,
		Description:          r.Description,
		EventDate:            r.EventDate,
		EventTime:            r.EventTime,
		Location:             r.Location,
		Capacity:             r.Capacity,
		RegistrationDeadline: r.RegistrationDeadline,
		ImageURL:             r.ImageURL,
		IsActive:             r.IsActive,
	}
}

// List handles GET /v1/events?page=&page_size=&include_past=. Admins may
// also pass include_inactive.
func (h *EventHandler) List(c echo.Context) error {
	limit, offset := parsePage(c)
	events, total, err := h.Events.List(c.Request().Context(), model.EventFilter{
		IncludePast:     parseBoolQuery(c, "include_past"),
		IncludeInactive: isAdmin(c) && parseBoolQuery(c, "include_inactive"),
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]eventResp, 0, len(events))
	for _, e := range events {
		out = append(out, newEventResp(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out, "count": len(out), "total": total})
}

// Search handles GET /v1/events/search?title=&location=&when=&page=&page_size=.
func (h *EventHandler) Search(c echo.Context) error {
	limit, offset := parsePage(c)
	events, total, err := h.Events.Search(c.Request().Context(), repository.EventSearchQuery{
		Title:    strings.TrimSpace(c.QueryParam("title")),
		Location: strings.TrimSpace(c.QueryParam("location")),
		When:     c.QueryParam("when"),
		Page:     offset/limit + 1,
		PageSize: limit,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]eventResp, 0, len(events))
	for _, e := range events {
		out = append(out, newEventResp(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out, "count": len(out), "total": total})
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "invalid event id")
	}
	e, err := h.Events.Get(c.Request().Context(), id, isAdmin(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newEventResp(e))
}

// Availability handles GET /v1/events/:id/availability.
func (h *EventHandler) Availability(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "invalid event id")
	}
	a, err := h.Events.Availability(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newAvailabilityResp(a))
}

// Create handles POST /v1/admin/events.
func (h *EventHandler) Create(c echo.Context) error {
	var req eventReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	e, err := h.Events.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newEventResp(e))
}

// Update handles PUT /v1/admin/events/:id. Only the fields present in
// the body change; "is_active": true restores a deleted event.
func (h *EventHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "invalid event id")
	}
	var req eventPatchReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	e, err := h.Events.Update(c.Request().Context(), id, req.patch())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newEventResp(e))
}

// Delete handles DELETE /v1/admin/events/:id (soft delete).
func (h *EventHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "invalid event id")
	}
	if err := h.Events.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
