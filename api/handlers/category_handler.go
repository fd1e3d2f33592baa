package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aidin1998/pricecatalog/api/responses"
	"github.com/Aidin1998/pricecatalog/internal/catalog"
)

// CategoryHandler serves /categories and the pricing reads hanging off it.
type CategoryHandler struct {
	categories *catalog.CategoryQueryService
	pricing    *catalog.PricingService
	logger     *zap.Logger
}

func NewCategoryHandler(categories *catalog.CategoryQueryService, pricing *catalog.PricingService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, pricing: pricing, logger: logger}
}

func (h *CategoryHandler) Register(rg *gin.RouterGroup) {
	categories := rg.Group("/categories")
	{
		categories.GET("", h.list)
		categories.GET("/lowest-price-by-category", h.lowestPriceByCategory)
		categories.GET("/lowest-brand-price", h.lowestBrandPrice)
		categories.GET("/:categoryName/price-summary", h.priceSummary)
	}
}

func (h *CategoryHandler) list(c *gin.Context) {
	categories, err := h.categories.ListCategories(c.Request.Context())
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) lowestPriceByCategory(c *gin.Context) {
	result, err := h.pricing.LowestPriceByCategory(c.Request.Context())
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CategoryHandler) lowestBrandPrice(c *gin.Context) {
	result, err := h.pricing.LowestTotalBrand(c.Request.Context())
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CategoryHandler) priceSummary(c *gin.Context) {
	result, err := h.pricing.CategoryPriceSummary(c.Request.Context(), c.Param("categoryName"))
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
