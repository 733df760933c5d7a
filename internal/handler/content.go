package handler

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/repository"
	"github.com/iliyamo/club-events/internal/service"
)

// ContentHandler serves announcements and editable page blocks.
type ContentHandler struct {
	Content *repository.ContentRepo
}

func NewContentHandler(r *repository.ContentRepo) *ContentHandler { return &ContentHandler{Content: r} }

var pageNameRe = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

type announcementReq struct {
	Title       string `json:"title" validate:"required,max=255"`
	Content     string `json:"content" validate:"required"`
	IsPublished *bool  `json:"is_published"`
}

type pageReq struct {
	Content string `json:"content" validate:"required"`
}

// ListPublished handles GET /v1/announcements.
func (h *ContentHandler) ListPublished(c echo.Context) error {
	return h.list(c, false)
}

// ListAll handles GET /v1/admin/announcements, drafts included.
func (h *ContentHandler) ListAll(c echo.Context) error {
	return h.list(c, true)
}

func (h *ContentHandler) list(c echo.Context, drafts bool) error {
	limit, offset := parsePage(c)
	items, err := h.Content.ListAnnouncements(c.Request().Context(), drafts, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]announcementResp, 0, len(items))
	for _, a := range items {
		out = append(out, newAnnouncementResp(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"announcements": out, "count": len(out)})
}

// CreateAnnouncement handles POST /v1/admin/announcements.
func (h *ContentHandler) CreateAnnouncement(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "unauthorized")
	}
	var req announcementReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	a := model.Announcement{Title: req.Title, Content: req.Content, AuthorID: uid, IsPublished: true}
	if req.IsPublished != nil {
		a.IsPublished = *req.IsPublished
	}
	if err := h.Content.CreateAnnouncement(c.Request().Context(), &a, time.Now()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newAnnouncementResp(a))
}

// UpdateAnnouncement handles PUT /v1/admin/announcements/:id.
func (h *ContentHandler) UpdateAnnouncement(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "invalid announcement id")
	}
	var req announcementReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	a, err := h.Content.GetAnnouncement(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, service.CodeNotFound, "announcement not found")
	}
	if err != nil {
		return respondError(c, err)
	}
	a.Title, a.Content = req.Title, req.Content
	if req.IsPublished != nil {
		a.IsPublished = *req.IsPublished
	}
	if err := h.Content.UpdateAnnouncement(ctx, &a, time.Now()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newAnnouncementResp(a))
}

// DeleteAnnouncement handles DELETE /v1/admin/announcements/:id.
func (h *ContentHandler) DeleteAnnouncement(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "invalid announcement id")
	}
	if err := h.Content.DeleteAnnouncement(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, service.CodeNotFound, "announcement not found")
		}
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetPage handles GET /v1/pages/:name.
func (h *ContentHandler) GetPage(c echo.Context) error {
	name := c.Param("name")
	if !pageNameRe.MatchString(name) {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "invalid page name")
	}
	p, err := h.Content.GetPage(c.Request().Context(), name)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, service.CodeNotFound, "page not found")
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pageResp{PageName: p.PageName, Content: p.Content, UpdatedBy: p.UpdatedBy, UpdatedAt: p.UpdatedAt})
}

// UpsertPage handles PUT /v1/admin/pages/:name.
func (h *ContentHandler) UpsertPage(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "unauthorized")
	}
	name := c.Param("name")
	if !pageNameRe.MatchString(name) {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "invalid page name")
	}
	var req pageReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	p, err := h.Content.UpsertPage(c.Request().Context(), name, req.Content, uid, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pageResp{PageName: p.PageName, Content: p.Content, UpdatedBy: p.UpdatedBy, UpdatedAt: p.UpdatedAt})
}
