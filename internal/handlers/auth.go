package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shopsmart/backend/internal/hash"
	"github.com/shopsmart/backend/internal/models"
	"github.com/shopsmart/backend/internal/mykafka"
	"github.com/shopsmart/backend/internal/service/token"
)

var (
	emailRe = regexp.MustCompile(`\S+@\S+\.\S+`)
	phoneRe = regexp.MustCompile(`^[0-9+\-\s]{10,15}$`)
)

type AuthHandler struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
	Producer      mykafka.Publisher
}

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	ShopName     string `json:"shop_name"`
	OwnerName    string `json:"owner_name"`
	BusinessType string `json:"business_type"`
	GSTNumber    string `json:"gst_number"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Website      string `json:"website"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	switch role {
	case models.RoleUser, models.RoleShop:
	case models.RoleAdmin:
		return echo.NewHTTPError(http.StatusForbidden, "admin registration is not allowed")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role selected")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRe.MatchString(email) {
		return echo.NewHTTPError(http.StatusBadRequest, "please enter a valid email address")
	}
	if len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "password must be at least 6 characters")
	}
	phone := strings.TrimSpace(req.Phone)
	if !phoneRe.MatchString(phone) {
		return echo.NewHTTPError(http.StatusBadRequest, "please enter a valid phone number")
	}

	name := req.Name
	if role == models.RoleShop {
		name = req.ShopName
		if req.OwnerName == "" || req.BusinessType == "" || req.AddressLine1 == "" ||
			req.City == "" || req.State == "" || req.PostalCode == "" || req.Country == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "please complete all mandatory shop details")
		}
	}
	if len(strings.TrimSpace(name)) < 2 {
		return echo.NewHTTPError(http.StatusBadRequest, "please enter a valid name")
	}

	var existing models.User
	if err := h.DB.Where("email = ?", email).First(&existing).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user := models.User{
		Name:               strings.TrimSpace(name),
		Email:              email,
		Phone:              phone,
		PasswordHash:       pwHash,
		Role:               role,
		ShopApprovalStatus: models.ShopApproved,
	}
	if role == models.RoleShop {
		// new shops wait for admin approval before they can log in
		user.ShopApprovalStatus = models.ShopPending
		user.ShopDetails = models.ShopDetails{
			ShopName:     req.ShopName,
			OwnerName:    req.OwnerName,
			BusinessType: req.BusinessType,
			GSTNumber:    req.GSTNumber,
			AddressLine1: req.AddressLine1,
			AddressLine2: req.AddressLine2,
			City:         req.City,
			State:        req.State,
			PostalCode:   req.PostalCode,
			Country:      req.Country,
			Website:      req.Website,
		}
	}

	if err := h.DB.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	publishEvent(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
		"role":   user.Role,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var user models.User
	if err := h.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if req.Role != "" && req.Role != user.Role {
		return echo.NewHTTPError(http.StatusForbidden, "role does not match this account")
	}
	if user.Role == models.RoleUser && user.IsBlocked {
		return echo.NewHTTPError(http.StatusForbidden, "your account is blocked by admin")
	}
	if user.Role == models.RoleShop && user.ShopApprovalStatus != models.ShopApproved {
		switch user.ShopApprovalStatus {
		case models.ShopSuspended:
			return echo.NewHTTPError(http.StatusForbidden, "your shop account is suspended by admin")
		case models.ShopRejected:
			return echo.NewHTTPError(http.StatusForbidden, "your shop account was rejected by admin")
		default:
			return echo.NewHTTPError(http.StatusForbidden, "your shop account is pending admin approval")
		}
	}

	accessToken, err := token.SignAccessToken(user.ID, user.Role, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create access token")
	}
	refreshToken, err := token.SignRefreshToken(user.ID, user.Role, h.RefreshSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create refresh token")
	}
	if err := token.SaveRefreshToken(h.DB, refreshToken, user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.SetCookie(token.CreateCookie("accessToken", accessToken, "/", time.Now().Add(token.AccessTTL)))
	c.SetCookie(token.CreateCookie("refreshToken", refreshToken, "/", time.Now().Add(token.RefreshTTL)))

	publishEvent(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"role":          user.Role,
	})
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	refreshCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh token missing")
	}

	if err := h.DB.Model(&models.RefreshToken{}).
		Where("token = ?", refreshCookie.Value).
		Update("revoked", true).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(token.CreateCookie("accessToken", "", "/", expired))
	c.SetCookie(token.CreateCookie("refreshToken", "", "/", expired))

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
