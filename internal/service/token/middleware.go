package token

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/shopsmart/backend/internal/models"
	"github.com/shopsmart/backend/internal/order"
)

// checkCookie validates the access cookie, rotating via the refresh
// cookie when the access token has expired. It returns the (possibly new)
// access and refresh tokens; refresh is empty when no rotation happened.
func (t *TokenService) checkCookie(c echo.Context) (string, string, error) {
	asCookie, err := c.Cookie("accessToken")
	if err == nil {
		tok, err := jwt.Parse(asCookie.Value, func(j *jwt.Token) (interface{}, error) {
			return t.JWTSecret, nil
		})
		if err == nil && tok.Valid {
			setUserContext(c, tok.Claims.(jwt.MapClaims))
			return asCookie.Value, "", nil
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
	}

	rfCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}
	newAccess, newRefresh, claims, err := t.RotateToken(rfCookie.Value)
	if err != nil {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "cannot rotate token: "+err.Error())
	}

	setUserContext(c, claims)
	return newAccess, newRefresh, nil
}

// RequireLogin authenticates any logged-in principal and refreshes
// cookies when needed.
func (t *TokenService) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		newAccess, newRefresh, err := t.checkCookie(c)
		if err != nil {
			return err
		}
		if newRefresh != "" {
			c.SetCookie(CreateCookie("accessToken", newAccess, "/", time.Now().Add(AccessTTL)))
			c.SetCookie(CreateCookie("refreshToken", newRefresh, "/", time.Now().Add(RefreshTTL)))
		}
		return next(c)
	}
}

// RequireRole layers a role check on top of RequireLogin.
func (t *TokenService) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return t.RequireLogin(func(c echo.Context) error {
			if got, _ := c.Get("role").(string); got != role {
				return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
			}
			return next(c)
		})
	}
}

func (t *TokenService) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return t.RequireRole(models.RoleAdmin)(next)
}

func (t *TokenService) RequireShop(next echo.HandlerFunc) echo.HandlerFunc {
	return t.RequireRole(models.RoleShop)(next)
}

func setUserContext(c echo.Context, claims jwt.MapClaims) {
	sub, _ := claims["sub"].(float64)
	role, _ := claims["role"].(string)
	c.Set("userID", uint(sub))
	c.Set("role", role)
}

// PrincipalFrom extracts the acting principal placed into the context by
// the middleware above. Handlers pass it on explicitly; transition logic
// never touches the echo context.
func PrincipalFrom(c echo.Context) order.Principal {
	id, _ := c.Get("userID").(uint)
	role, _ := c.Get("role").(string)
	return order.Principal{ID: id, Role: role}
}
