package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/club-events/internal/service"
)

func newCtx(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestStatusFor(t *testing.T) {
	cases := map[service.Code]int{
		service.CodeNotFound:              http.StatusNotFound,
		service.CodeForbidden:             http.StatusForbidden,
		service.CodeValidation:            http.StatusBadRequest,
		service.CodeUnauthorized:          http.StatusUnauthorized,
		service.CodeInvalidState:          http.StatusConflict,
		service.CodeDeadlinePassed:        http.StatusConflict,
		service.CodeCapacityExceeded:      http.StatusConflict,
		service.CodeDuplicateRegistration: http.StatusConflict,
		service.CodeAlreadyCancelled:      http.StatusConflict,
		service.CodeTooLateToCancel:       http.StatusConflict,
		service.CodeConflict:              http.StatusConflict,
	}
	for code, want := range cases {
		assert.Equal(t, want, statusFor(code), code)
	}
}

func TestRespondError(t *testing.T) {
	c, rec := newCtx(http.MethodGet, "/", "")
	require.NoError(t, respondError(c, service.ErrCapacityExceeded))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"CAPACITY_EXCEEDED"`)

	c, rec = newCtx(http.MethodGet, "/", "")
	require.NoError(t, respondError(c, errors.New("disk on fire")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error","code":"INTERNAL"}`, rec.Body.String())
}

func TestParsePage(t *testing.T) {
	c, _ := newCtx(http.MethodGet, "/?page=3&page_size=10", "")
	limit, offset := parsePage(c)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	c, _ = newCtx(http.MethodGet, "/?page=-1&page_size=1000", "")
	limit, offset = parsePage(c)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 0, offset)

	c, _ = newCtx(http.MethodGet, "/", "")
	limit, _ = parsePage(c)
	assert.Equal(t, 20, limit)
}

func TestBindAndValidate(t *testing.T) {
	c, _ := newCtx(http.MethodPost, "/", `{"event_id": 0}`)
	var req registerEventReq
	err := bindAndValidate(c, &req)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrValidation)

	c, _ = newCtx(http.MethodPost, "/", `{not json`)
	err = bindAndValidate(c, &req)
	assert.ErrorIs(t, err, service.ErrValidation)

	c, _ = newCtx(http.MethodPost, "/", `{"event_id": 5}`)
	require.NoError(t, bindAndValidate(c, &req))
	assert.Equal(t, uint64(5), req.EventID)
}
