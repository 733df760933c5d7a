package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/club-events/internal/config"
	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/repository"
	"github.com/iliyamo/club-events/internal/utils"
)

const secret = "test-secret"

func newContext(t *testing.T, method, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func ok(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestJWTAuth_ValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(secret, 42, model.RoleMember, 5)
	require.NoError(t, err)

	c, rec := newContext(t, http.MethodGet, "/v1/me")
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)

	require.NoError(t, JWTAuth(secret)(ok)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(42), c.Get(ContextUserID))
	assert.Equal(t, model.RoleMember, c.Get(ContextRole))
}

func TestJWTAuth_Rejects(t *testing.T) {
	other, err := utils.NewAccessToken("another-secret", 1, model.RoleAdmin, 5)
	require.NoError(t, err)

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not-a-jwt",
		"wrong secret":   "Bearer " + other.Token,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			c, rec := newContext(t, http.MethodGet, "/v1/me")
			if header != "" {
				c.Request().Header.Set(echo.HeaderAuthorization, header)
			}
			require.NoError(t, JWTAuth(secret)(ok)(c))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)
			assert.Nil(t, c.Get(ContextUserID))
		})
	}
}

func TestRequireRole(t *testing.T) {
	adminOnly := RequireRole(model.RoleAdmin)

	c, rec := newContext(t, http.MethodGet, "/v1/admin/users")
	c.Set(ContextRole, model.RoleMember)
	require.NoError(t, adminOnly(ok)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newContext(t, http.MethodGet, "/v1/admin/users")
	c.Set(ContextRole, model.RoleAdmin)
	require.NoError(t, adminOnly(ok)(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// no role at all means JWTAuth never ran
	c, rec = newContext(t, http.MethodGet, "/v1/admin/users")
	require.NoError(t, adminOnly(ok)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

type accounts map[uint64]model.User

func (a accounts) GetByID(_ context.Context, id uint64) (model.User, error) {
	if id == 99 {
		return model.User{}, errors.New("db down")
	}
	u, ok := a[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func TestActiveAccount(t *testing.T) {
	users := accounts{
		1: {ID: 1, IsActive: true, IsAdmin: false},
		2: {ID: 2, IsActive: false},
		3: {ID: 3, IsActive: true, IsAdmin: true},
	}
	run := func(uid uint64, tokenRole string) (echo.Context, *httptest.ResponseRecorder, error) {
		c, rec := newContext(t, http.MethodGet, "/v1/profile")
		if uid != 0 {
			c.Set(ContextUserID, uid)
		}
		c.Set(ContextRole, tokenRole)
		return c, rec, ActiveAccount(users)(ok)(c)
	}

	// an admin token for an account that is no longer admin
	c, rec, err := run(1, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoleMember, c.Get(ContextRole))

	c, rec, err = run(3, model.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoleAdmin, c.Get(ContextRole))

	_, rec, err = run(2, model.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"FORBIDDEN"`)

	for _, uid := range []uint64{0, 7} {
		_, rec, err = run(uid, model.RoleMember)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	_, _, err = run(99, model.RoleMember)
	assert.EqualError(t, err, "db down")
}

func TestRateLimitAndCache_PassThroughWithoutRedis(t *testing.T) {
	rl := RateLimit(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, nil)
	cache := ResponseCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil)

	for i := 0; i < 3; i++ {
		c, rec := newContext(t, http.MethodGet, "/v1/events")
		require.NoError(t, rl(cache(ok))(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
}

func TestRateKey(t *testing.T) {
	c, _ := newContext(t, http.MethodPost, "/v1/registrations")
	c.SetPath("/v1/registrations")
	c.Request().RemoteAddr = "10.0.0.1:5555"
	c.Set(ContextUserID, uint64(7))

	assert.Equal(t, "rl:ip:10.0.0.1", rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:user:7", rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
	assert.Equal(t, "rl:ip:10.0.0.1:user:7:route:POST /v1/registrations",
		rateKey(config.RateLimitConfig{Prefix: "rl"}, c))

	anon, _ := newContext(t, http.MethodGet, "/v1/events")
	assert.Equal(t, "rl:user:anon", rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, anon))
}

func TestCacheKey_DistinguishesPathAndQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache"}
	a, _ := newContext(t, http.MethodGet, "/v1/events/1")
	b, _ := newContext(t, http.MethodGet, "/v1/events/2")
	p1, _ := newContext(t, http.MethodGet, "/v1/events?page=1")
	p2, _ := newContext(t, http.MethodGet, "/v1/events?page=2")

	assert.NotEqual(t, cacheKey(cfg, a), cacheKey(cfg, b))
	assert.NotEqual(t, cacheKey(cfg, p1), cacheKey(cfg, p2))

	cfg.KeyStrategy = "route"
	assert.Equal(t, cacheKey(cfg, p1), cacheKey(cfg, p2))
}
