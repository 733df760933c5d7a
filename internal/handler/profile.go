package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-events/internal/config"
	"github.com/iliyamo/club-events/internal/repository"
	"github.com/iliyamo/club-events/internal/service"
	"github.com/iliyamo/club-events/internal/utils"
)

// ProfileHandler lets members read and edit their own account.
type ProfileHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
	Ledger   *service.RegistrationService
	Verifier service.EmailVerifier
}

func NewProfileHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, ledger *service.RegistrationService, v service.EmailVerifier) *ProfileHandler {
	if v == nil {
		v = service.NopNotifier{}
	}
	return &ProfileHandler{Cfg: cfg, Users: u, Tokens: t, Ledger: ledger, Verifier: v}
}

type updateProfileReq struct {
	FullName    string  `json:"full_name" validate:"required,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type changeEmailReq struct {
	NewEmail string `json:"new_email" validate:"required,email,max=255"`
}

type deleteAccountReq struct {
	Confirm bool `json:"confirm"`
}

// Update handles PUT /v1/profile.
func (h *ProfileHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "unauthorized")
	}
	var req updateProfileReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	if err := h.Users.UpdateProfile(ctx, uid, strings.TrimSpace(req.FullName), req.PhoneNumber, time.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, service.CodeNotFound, "user not found")
		}
		return respondError(c, err)
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}

// ChangePassword handles PUT /v1/profile/password. Every refresh token of
// the user is revoked so other sessions must log in again.
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "unauthorized")
	}
	var req changePasswordReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "current password is incorrect")
	}
	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return respondError(c, err)
	}
	now := time.Now()
	if err := h.Users.UpdatePassword(ctx, uid, hash, now); err != nil {
		return respondError(c, err)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, uid, now); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RequestEmailChange handles POST /v1/profile/email. The address is not
// changed here; a signed link is sent to the new address and VerifyEmail
// applies it.
func (h *ProfileHandler) RequestEmailChange(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "unauthorized")
	}
	var req changeEmailReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	email := strings.ToLower(strings.TrimSpace(req.NewEmail))
	ctx := c.Request().Context()

	switch _, err := h.Users.GetByEmail(ctx, email); {
	case err == nil:
		return fail(c, http.StatusConflict, service.CodeConflict, "email already in use")
	case !errors.Is(err, repository.ErrNotFound):
		return respondError(c, err)
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}

	tok, err := utils.NewEmailChangeToken(h.Cfg.JWTSecret, uid, email, time.Duration(h.Cfg.EmailTokenTTLMin)*time.Minute)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Verifier.SendEmailVerification(ctx, service.EmailVerification{
		UserID:        uid,
		RecipientName: u.FullName,
		NewEmail:      email,
		Token:         tok.Token,
		ExpiresAt:     tok.Exp,
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{"message": "verification sent", "expires": tok.Exp})
}

// VerifyEmail handles GET /v1/auth/verify-email?token=. It is reached
// from the mailed link, so it authenticates by the token alone.
func (h *ProfileHandler) VerifyEmail(c echo.Context) error {
	uid, email, err := utils.ParseEmailChangeToken(h.Cfg.JWTSecret, c.QueryParam("token"))
	if err != nil {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "invalid or expired token")
	}
	ctx := c.Request().Context()
	u, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, service.CodeNotFound, "user not found")
	}
	if err != nil {
		return respondError(c, err)
	}
	if !u.IsActive {
		return fail(c, http.StatusForbidden, service.CodeForbidden, "account disabled")
	}

	switch err := h.Users.UpdateEmail(ctx, uid, email, time.Now()); {
	case errors.Is(err, repository.ErrEmailExists):
		return fail(c, http.StatusConflict, service.CodeConflict, "email already in use")
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, service.CodeNotFound, "user not found")
	case err != nil:
		return respondError(c, err)
	}
	u, err = h.Users.GetByID(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}

// Delete handles DELETE /v1/profile. The account is deactivated rather
// than removed so registration history stays intact; its upcoming
// registrations are released and every session is revoked.
func (h *ProfileHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "unauthorized")
	}
	var req deleteAccountReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	if !req.Confirm {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "confirm must be true to delete the account")
	}

	ctx := c.Request().Context()
	now := time.Now()
	if err := h.Users.SetActive(ctx, uid, false, now); err != nil {
		return respondError(c, err)
	}
	if _, err := h.Ledger.CancelUpcomingForUser(ctx, uid); err != nil {
		return respondError(c, err)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, uid, now); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
