package handler // handler defines the HTTP handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-events/internal/middleware"
	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/service"
)

// getUserID returns the authenticated caller stored by JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	if uid, ok := c.Get(middleware.ContextUserID).(uint64); ok && uid != 0 {
		return uid, nil
	}
	return 0, errors.New("invalid user_id in context")
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get(middleware.ContextRole).(string)
	return role == model.RoleAdmin
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func parseBoolQuery(c echo.Context, name string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(c.QueryParam(name)))
	return v
}

// parsePage reads ?page and ?page_size, defaulting to the first page of 20.
func parsePage(c echo.Context) (limit, offset int) {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.QueryParam("page_size"))
	if err != nil || size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return size, (page - 1) * size
}

func fail(c echo.Context, status int, code service.Code, msg string) error {
	return c.JSON(status, echo.Map{"error": msg, "code": code})
}

func statusFor(code service.Code) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeForbidden:
		return http.StatusForbidden
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusConflict
	}
}

// respondError maps business errors onto their status; anything else is
// logged and reported as a bare 500.
func respondError(c echo.Context, err error) error {
	var se *service.Error
	if errors.As(err, &se) {
		return fail(c, statusFor(se.Code), se.Code, se.Message)
	}
	slog.ErrorContext(c.Request().Context(), "request failed",
		"method", c.Request().Method,
		"path", c.Path(),
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		"err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error", "code": "INTERNAL"})
}

// bindAndValidate decodes the JSON body into req and runs its validate
// tags. The returned error is a VALIDATION *service.Error.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return &service.Error{Code: service.CodeValidation, Message: "invalid body"}
	}
	if err := c.Validate(req); err != nil {
		return &service.Error{Code: service.CodeValidation, Message: validationMessage(err)}
	}
	return nil
}

// Validator adapts go-playground/validator to echo.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (cv *Validator) Validate(i any) error { return cv.v.Struct(i) }

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min", "gte", "gt":
		return field + " is too small or too short"
	case "max", "lte":
		return field + " is too large or too long"
	}
	return field + " is invalid"
}
