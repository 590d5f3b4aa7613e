package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shopsmart/backend/internal/hash"
	"github.com/shopsmart/backend/internal/models"
	"github.com/shopsmart/backend/internal/service/token"
)

type UserHandler struct {
	DB *gorm.DB
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	p := token.PrincipalFrom(c)

	var user models.User
	if err := h.DB.First(&user, p.ID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	p := token.PrincipalFrom(c)

	var req struct {
		Name        string              `json:"name"`
		Phone       string              `json:"phone"`
		ShopDetails *models.ShopDetails `json:"shop_details"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var user models.User
	if err := h.DB.First(&user, p.ID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	if req.Name != "" {
		if len(strings.TrimSpace(req.Name)) < 2 {
			return echo.NewHTTPError(http.StatusBadRequest, "please enter a valid name")
		}
		user.Name = strings.TrimSpace(req.Name)
	}
	if req.Phone != "" {
		if !phoneRe.MatchString(strings.TrimSpace(req.Phone)) {
			return echo.NewHTTPError(http.StatusBadRequest, "please enter a valid phone number")
		}
		user.Phone = strings.TrimSpace(req.Phone)
	}
	if user.Role == models.RoleShop && req.ShopDetails != nil {
		user.ShopDetails = mergeShopDetails(user.ShopDetails, *req.ShopDetails)
	}

	if err := h.DB.Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// mergeShopDetails builds the next value field by field; empty incoming
// fields keep the stored value.
func mergeShopDetails(prev, next models.ShopDetails) models.ShopDetails {
	out := prev
	if next.ShopName != "" {
		out.ShopName = next.ShopName
	}
	if next.OwnerName != "" {
		out.OwnerName = next.OwnerName
	}
	if next.BusinessType != "" {
		out.BusinessType = next.BusinessType
	}
	if next.GSTNumber != "" {
		out.GSTNumber = next.GSTNumber
	}
	if next.AddressLine1 != "" {
		out.AddressLine1 = next.AddressLine1
	}
	if next.AddressLine2 != "" {
		out.AddressLine2 = next.AddressLine2
	}
	if next.City != "" {
		out.City = next.City
	}
	if next.State != "" {
		out.State = next.State
	}
	if next.PostalCode != "" {
		out.PostalCode = next.PostalCode
	}
	if next.Country != "" {
		out.Country = next.Country
	}
	if next.Website != "" {
		out.Website = next.Website
	}
	return out
}

func (h *UserHandler) UpdatePassword(c echo.Context) error {
	p := token.PrincipalFrom(c)

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "current password and new password are required")
	}
	if len(req.NewPassword) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "password must be at least 6 characters")
	}

	var user models.User
	if err := h.DB.First(&user, p.ID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if !hash.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return echo.NewHTTPError(http.StatusBadRequest, "current password is incorrect")
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	user.PasswordHash = pwHash
	if err := h.DB.Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password updated successfully"})
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	var users []models.User
	if err := h.DB.Where("role = ?", models.RoleUser).
		Order("created_at DESC").Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) UpdateBlockStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		IsBlocked *bool `json:"is_blocked"`
	}
	if err := c.Bind(&req); err != nil || req.IsBlocked == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "is_blocked must be boolean")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil || user.Role != models.RoleUser {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	user.IsBlocked = *req.IsBlocked
	if err := h.DB.Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil || user.Role != models.RoleUser {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err := h.DB.Delete(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

func (h *UserHandler) PendingShops(c echo.Context) error {
	var shops []models.User
	if err := h.DB.Where("role = ? AND shop_approval_status = ?", models.RoleShop, models.ShopPending).
		Order("created_at DESC").Find(&shops).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, shops)
}

func (h *UserHandler) UpdateShopApproval(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	switch req.Status {
	case models.ShopApproved, models.ShopRejected, models.ShopSuspended, models.ShopPending:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid shop status")
	}

	var shop models.User
	if err := h.DB.First(&shop, id).Error; err != nil || shop.Role != models.RoleShop {
		return echo.NewHTTPError(http.StatusNotFound, "shop account not found")
	}

	shop.ShopApprovalStatus = req.Status
	if err := h.DB.Save(&shop).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, shop)
}

func (h *UserHandler) DeleteShop(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var shop models.User
	if err := h.DB.First(&shop, id).Error; err != nil || shop.Role != models.RoleShop {
		return echo.NewHTTPError(http.StatusNotFound, "shop account not found")
	}
	if err := h.DB.Delete(&shop).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "shop deleted"})
}

type shopWithSales struct {
	models.User
	TotalProducts int     `json:"total_products"`
	TotalSales    float64 `json:"total_sales"`
	TotalOrders   int     `json:"total_orders"`
}

// ListShops returns every shop account with per-shop product, sales and
// order totals. Sales use the current catalog price, matching the shop
// sales report.
func (h *UserHandler) ListShops(c echo.Context) error {
	var shops []models.User
	if err := h.DB.Where("role = ?", models.RoleShop).
		Order("created_at DESC").Find(&shops).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var products []models.Product
	if err := h.DB.Where("shop_id IS NOT NULL").Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	productShop := make(map[uint]uint, len(products))
	productPrice := make(map[uint]float64, len(products))
	productCount := make(map[uint]int)
	for _, p := range products {
		productShop[p.ID] = *p.ShopID
		productPrice[p.ID] = p.Price
		productCount[*p.ShopID]++
	}

	var items []models.OrderItem
	if err := h.DB.Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	sales := make(map[uint]float64)
	ordersSeen := make(map[uint]map[uint]struct{}) // shopID -> order IDs
	for _, item := range items {
		shopID, ok := productShop[item.ProductID]
		if !ok {
			continue
		}
		sales[shopID] += float64(item.Quantity) * productPrice[item.ProductID]
		if ordersSeen[shopID] == nil {
			ordersSeen[shopID] = make(map[uint]struct{})
		}
		ordersSeen[shopID][item.OrderID] = struct{}{}
	}

	out := make([]shopWithSales, 0, len(shops))
	for _, s := range shops {
		out = append(out, shopWithSales{
			User:          s,
			TotalProducts: productCount[s.ID],
			TotalSales:    sales[s.ID],
			TotalOrders:   len(ordersSeen[s.ID]),
		})
	}
	return c.JSON(http.StatusOK, out)
}
