package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shopsmart/backend/internal/models"
)

func newService(t *testing.T) *TokenService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RefreshToken{}))
	return &TokenService{
		DB:            db,
		JWTSecret:     []byte("jwt-secret"),
		RefreshSecret: []byte("refresh-secret"),
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newService(t)

	raw, err := SignAccessToken(42, models.RoleShop, svc.JWTSecret)
	require.NoError(t, err)

	tok, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return svc.JWTSecret, nil })
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims := tok.Claims.(jwt.MapClaims)
	require.EqualValues(t, 42, claims["sub"])
	require.Equal(t, models.RoleShop, claims["role"])
}

func TestValidateRefreshRejectsAccessToken(t *testing.T) {
	svc := newService(t)

	// access tokens lack the refresh marker and must not pass, even when
	// signed with the refresh secret
	raw, err := SignAccessToken(1, models.RoleUser, svc.RefreshSecret)
	require.NoError(t, err)

	_, err = ValidateRefresh(raw, svc.RefreshSecret, svc.DB)
	require.ErrorContains(t, err, "not a refresh token")
}

func TestValidateRefreshRequiresStoredToken(t *testing.T) {
	svc := newService(t)

	raw, err := SignRefreshToken(1, models.RoleUser, svc.RefreshSecret)
	require.NoError(t, err)

	_, err = ValidateRefresh(raw, svc.RefreshSecret, svc.DB)
	require.ErrorContains(t, err, "not found")

	require.NoError(t, SaveRefreshToken(svc.DB, raw, 1))
	claims, err := ValidateRefresh(raw, svc.RefreshSecret, svc.DB)
	require.NoError(t, err)
	require.EqualValues(t, 1, claims["sub"])
}

func TestValidateRefreshRejectsRevoked(t *testing.T) {
	svc := newService(t)

	raw, err := SignRefreshToken(1, models.RoleUser, svc.RefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(svc.DB, raw, 1))
	require.NoError(t, svc.RevokeRefresh(raw))

	_, err = ValidateRefresh(raw, svc.RefreshSecret, svc.DB)
	require.ErrorContains(t, err, "revoked")
}

func TestRotateToken(t *testing.T) {
	svc := newService(t)

	raw, err := SignRefreshToken(7, models.RoleUser, svc.RefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(svc.DB, raw, 7))

	newAccess, newRefresh, claims, err := svc.RotateToken(raw)
	require.NoError(t, err)
	require.NotEmpty(t, newAccess)
	require.NotEmpty(t, newRefresh)
	require.NotEqual(t, raw, newRefresh)
	require.EqualValues(t, 7, claims["sub"])

	// the rotated token is persisted and usable
	_, err = ValidateRefresh(newRefresh, svc.RefreshSecret, svc.DB)
	require.NoError(t, err)
}

func TestRequireLoginWithValidCookie(t *testing.T) {
	svc := newService(t)
	e := echo.New()

	raw, err := SignAccessToken(9, models.RoleShop, svc.JWTSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(CreateCookie("accessToken", raw, "/", time.Now().Add(AccessTTL)))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := svc.RequireLogin(func(c echo.Context) error {
		p := PrincipalFrom(c)
		require.EqualValues(t, 9, p.ID)
		require.True(t, p.IsShop())
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireLoginWithoutCookies(t *testing.T) {
	svc := newService(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := svc.RequireLogin(func(echo.Context) error { return nil })
	err := handler(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	svc := newService(t)
	e := echo.New()

	raw, err := SignAccessToken(3, models.RoleUser, svc.JWTSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(CreateCookie("accessToken", raw, "/", time.Now().Add(AccessTTL)))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := svc.RequireAdmin(func(echo.Context) error { return nil })
	errResult := handler(c)

	var he *echo.HTTPError
	require.ErrorAs(t, errResult, &he)
	require.Equal(t, http.StatusForbidden, he.Code)
}

func TestExpiredAccessRotatesViaRefreshCookie(t *testing.T) {
	svc := newService(t)
	e := echo.New()

	// hand-build an already expired access token
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  float64(5),
		"role": models.RoleUser,
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})
	rawExpired, err := expired.SignedString(svc.JWTSecret)
	require.NoError(t, err)

	refresh, err := SignRefreshToken(5, models.RoleUser, svc.RefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(svc.DB, refresh, 5))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(CreateCookie("accessToken", rawExpired, "/", time.Now()))
	req.AddCookie(CreateCookie("refreshToken", refresh, "/", time.Now().Add(RefreshTTL)))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := svc.RequireLogin(func(c echo.Context) error {
		require.EqualValues(t, 5, PrincipalFrom(c).ID)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// fresh cookies are set on the response
	var names []string
	for _, ck := range rec.Result().Cookies() {
		names = append(names, ck.Name)
	}
	require.Contains(t, names, "accessToken")
	require.Contains(t, names, "refreshToken")
}
