package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shopsmart/backend/internal/cache"
	"github.com/shopsmart/backend/internal/models"
	"github.com/shopsmart/backend/internal/mykafka"
	"github.com/shopsmart/backend/internal/service/search"
	"github.com/shopsmart/backend/internal/service/token"
	"github.com/shopsmart/backend/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer mykafka.Publisher
	ES       *elasticsearch.Client
	ESIndex  string
	Cache    *cache.ProductCache
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       uint    `json:"stock"`
	Category    string  `json:"category"`
}

func (h *ProductHandler) index(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	if err := search.IndexProduct(c.Request().Context(), h.ES, h.ESIndex, p); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Product{})
	if category := c.QueryParam("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var items []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if p, ok := h.Cache.Get(c.Request().Context(), uint(id)); ok {
		return c.JSON(http.StatusOK, p)
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	h.Cache.Set(c.Request().Context(), &product)
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	p := token.PrincipalFrom(c)

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required and price must not be negative")
	}

	prod := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
	}
	// admin-added products stay unowned
	if p.IsShop() {
		shopID := p.ID
		prod.ShopID = &shopID
	}

	if err := h.DB.Create(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.index(c, &prod)
	publishEvent(c, h.Producer, "product_events", fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusCreated, prod)
}

// loadOwned fetches the product and enforces that the principal may
// modify it: admins always, shops only for their own products.
func (h *ProductHandler) loadOwned(c echo.Context, id int) (*models.Product, error) {
	p := token.PrincipalFrom(c)

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	if !p.IsAdmin() {
		if prod.ShopID == nil || *prod.ShopID != p.ID {
			return nil, echo.NewHTTPError(http.StatusForbidden, "product does not belong to your shop")
		}
	}
	return &prod, nil
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	prod, err := h.loadOwned(c, id)
	if err != nil {
		return err
	}

	if req.Name != "" {
		prod.Name = req.Name
	}
	if req.Description != "" {
		prod.Description = req.Description
	}
	if req.Price > 0 {
		prod.Price = req.Price
	}
	if req.Category != "" {
		prod.Category = req.Category
	}
	prod.Stock = req.Stock

	if err := h.DB.Save(prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.Cache.Invalidate(c.Request().Context(), prod.ID)
	h.index(c, prod)
	publishEvent(c, h.Producer, "product_events", fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	prod, err := h.loadOwned(c, id)
	if err != nil {
		return err
	}

	if err := h.DB.Delete(prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.Cache.Invalidate(c.Request().Context(), prod.ID)
	if h.ES != nil {
		if err := search.DeleteProduct(c.Request().Context(), h.ES, h.ESIndex, prod.ID); err != nil {
			c.Logger().Errorf("ES delete error: %v", err)
		}
	}
	publishEvent(c, h.Producer, "product_events", fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_deleted",
		"productID": prod.ID,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) AddReview(c echo.Context) error {
	p := token.PrincipalFrom(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Rating  uint   `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Rating < 1 || req.Rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	review := models.Review{
		ProductID: prod.ID,
		UserID:    p.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.DB.Create(&review).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// rating aggregate is derived from the review rows
	prod.Rating = (prod.Rating*float64(prod.NumReviews) + float64(req.Rating)) / float64(prod.NumReviews+1)
	prod.NumReviews++
	if err := h.DB.Save(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.Cache.Invalidate(c.Request().Context(), prod.ID)
	h.index(c, &prod)

	return c.JSON(http.StatusCreated, review)
}

func (h *ProductHandler) GetReviews(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var reviews []models.Review
	if err := h.DB.Where("product_id = ?", id).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reviews)
}
