package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aidin1998/pricecatalog/api/responses"
	"github.com/Aidin1998/pricecatalog/internal/catalog"
	"github.com/Aidin1998/pricecatalog/pkg/validation"
)

// CreateBrandRequest is the body of POST /brands.
type CreateBrandRequest struct {
	Name string `json:"name" validate:"required"`
}

// BrandHandler serves /brands.
type BrandHandler struct {
	brands    *catalog.BrandService
	pricing   *catalog.PricingService
	validator *validation.Validator
	logger    *zap.Logger
}

func NewBrandHandler(brands *catalog.BrandService, pricing *catalog.PricingService, v *validation.Validator, logger *zap.Logger) *BrandHandler {
	return &BrandHandler{brands: brands, pricing: pricing, validator: v, logger: logger}
}

func (h *BrandHandler) Register(rg *gin.RouterGroup) {
	brands := rg.Group("/brands")
	{
		brands.GET("", h.list)
		brands.GET("/lowest-price", h.lowestPrice)
		brands.POST("", h.create)
		brands.PATCH("/:id", h.patch)
		brands.DELETE("/:id", h.delete)
	}
}

func (h *BrandHandler) list(c *gin.Context) {
	brands, err := h.brands.ListBrands(c.Request.Context())
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, brands)
}

func (h *BrandHandler) lowestPrice(c *gin.Context) {
	result, err := h.pricing.LowestTotalBrand(c.Request.Context())
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BrandHandler) create(c *gin.Context) {
	var req CreateBrandRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		responses.Error(c, h.logger, err)
		return
	}

	brand, err := h.brands.CreateBrand(c.Request.Context(), req.Name)
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, brand)
}

func (h *BrandHandler) patch(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	patch, err := patchBody(c)
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}

	brand, err := h.brands.PatchBrand(c.Request.Context(), id, patch)
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, brand)
}

func (h *BrandHandler) delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	if _, err := h.brands.DeleteBrand(c.Request.Context(), id); err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
