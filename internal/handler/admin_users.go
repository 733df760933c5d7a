package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-events/internal/repository"
	"github.com/iliyamo/club-events/internal/service"
)

// AdminUserHandler lets admins browse accounts and toggle their flags.
type AdminUserHandler struct {
	Users *repository.UserRepo
}

func NewAdminUserHandler(u *repository.UserRepo) *AdminUserHandler { return &AdminUserHandler{Users: u} }

type flagReq struct {
	Value *bool `json:"value" validate:"required"`
}

// List handles GET /v1/admin/users.
func (h *AdminUserHandler) List(c echo.Context) error {
	limit, offset := parsePage(c)
	users, err := h.Users.List(c.Request().Context(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResp(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out, "count": len(out)})
}

// Get handles GET /v1/admin/users/:id.
func (h *AdminUserHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "invalid user id")
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, service.CodeNotFound, "user not found")
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}

// SetAdmin handles PUT /v1/admin/users/:id/admin.
func (h *AdminUserHandler) SetAdmin(c echo.Context) error {
	return h.setFlag(c, h.Users.SetAdmin, "cannot remove your own admin rights")
}

// SetActive handles PUT /v1/admin/users/:id/active.
func (h *AdminUserHandler) SetActive(c echo.Context) error {
	return h.setFlag(c, h.Users.SetActive, "cannot deactivate your own account")
}

type flagSetter func(ctx context.Context, id uint64, v bool, now time.Time) error

func (h *AdminUserHandler) setFlag(c echo.Context, set flagSetter, selfMsg string) error {
	caller, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "invalid user id")
	}
	var req flagReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	// an admin cannot demote or deactivate their own account
	if id == caller && !*req.Value {
		return fail(c, http.StatusConflict, service.CodeConflict, selfMsg)
	}
	ctx := c.Request().Context()
	if err := set(ctx, id, *req.Value, time.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, service.CodeNotFound, "user not found")
		}
		return respondError(c, err)
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}
