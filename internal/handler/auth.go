package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-events/internal/config"
	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/repository"
	"github.com/iliyamo/club-events/internal/service"
	"github.com/iliyamo/club-events/internal/utils"
)

// Login lockout policy.
const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Email       string  `json:"email" validate:"required,email,max=255"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	FullName    string  `json:"full_name" validate:"required,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
	StudentID   string  `json:"student_id"`
	NationalID  string  `json:"national_id"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    userResp  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// issue creates a fresh access/refresh pair for u and stores the refresh hash.
func (h *AuthHandler) issue(ctx context.Context, u model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role(), h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp, time.Now()); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    newUserResp(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Register creates a member account and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	identity, err := model.NewIdentity(req.StudentID, req.NationalID)
	if err != nil {
		return fail(c, http.StatusBadRequest, service.CodeValidation, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, repository.NewUser{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    strings.TrimSpace(req.FullName),
		PhoneNumber: req.PhoneNumber,
		Identity:    identity,
	}, h.Cfg.BcryptCost, time.Now())
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return fail(c, http.StatusConflict, service.CodeConflict, "email already exists")
	case errors.Is(err, repository.ErrIdentityExists):
		return fail(c, http.StatusConflict, service.CodeConflict, "identity already registered")
	case err != nil:
		return respondError(c, err)
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair. Five
// consecutive failures lock the account for fifteen minutes.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "invalid credentials")
	}
	if err != nil {
		return respondError(c, err)
	}
	now := time.Now().UTC()
	if u.IsLocked(now) {
		return fail(c, http.StatusForbidden, service.CodeForbidden, "account temporarily locked")
	}
	if !u.IsActive {
		return fail(c, http.StatusForbidden, service.CodeForbidden, "account disabled")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		if err := h.Users.RecordFailedLogin(ctx, u.ID, maxFailedLogins, lockoutDuration, now); err != nil {
			return respondError(c, err)
		}
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "invalid credentials")
	}
	if err := h.Users.ResetLoginFailures(ctx, u.ID); err != nil {
		return respondError(c, err)
	}

	resp, err := h.issue(ctx, u)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// refreshOwner validates the body's refresh token and loads its active owner.
func (h *AuthHandler) refreshOwner(ctx context.Context, raw string) (model.User, string, error) {
	hash := utils.HashRefreshRaw(raw)
	userID, err := h.Tokens.ValidateRefresh(ctx, hash, time.Now())
	if err != nil {
		return model.User{}, "", err
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, "", err
	}
	if !u.IsActive {
		return model.User{}, "", repository.ErrNotFound
	}
	return u, hash, nil
}

// Refresh validates by hash, revokes the old token and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "refresh_token required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, hash, err := h.refreshOwner(ctx, strings.TrimSpace(req.RefreshToken))
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "invalid refresh")
	}
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Tokens.RevokeByHash(ctx, hash, time.Now()); err != nil {
		return respondError(c, err)
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshAccess returns a new access token without rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, service.CodeValidation, "refresh_token required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, _, err := h.refreshOwner(ctx, strings.TrimSpace(req.RefreshToken))
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "invalid refresh")
	}
	if err != nil {
		return respondError(c, err)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role(), h.Cfg.AccessTTLMin)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes one refresh token when the body names it, otherwise every
// refresh token of the bearer's user.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	now := time.Now()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash, now); err != nil {
			return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash, now); err != nil {
			return respondError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		uid, _, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "unauthorized")
		}
		if err := h.Tokens.RevokeAllForUser(ctx, uid, now); err != nil {
			return respondError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	return fail(c, http.StatusBadRequest, service.CodeValidation, "provide Authorization header or refresh_token")
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "unauthorized")
	}
	u, err := h.Users.GetByID(c.Request().Context(), uid)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusUnauthorized, service.CodeUnauthorized, "unauthorized")
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}
