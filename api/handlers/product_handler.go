package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Aidin1998/pricecatalog/api/responses"
	"github.com/Aidin1998/pricecatalog/internal/catalog"
	"github.com/Aidin1998/pricecatalog/pkg/validation"
)

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	BrandID    *int64           `json:"brandId" validate:"required"`
	CategoryID *int64           `json:"categoryId" validate:"required"`
	Price      *decimal.Decimal `json:"price" validate:"required"`
}

// ProductHandler serves /products.
type ProductHandler struct {
	products  *catalog.ProductService
	queries   *catalog.ProductQueryService
	validator *validation.Validator
	logger    *zap.Logger
}

func NewProductHandler(products *catalog.ProductService, queries *catalog.ProductQueryService, v *validation.Validator, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, queries: queries, validator: v, logger: logger}
}

func (h *ProductHandler) Register(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.list)
		products.POST("", h.create)
		products.PATCH("/:id", h.patch)
		products.DELETE("/:id", h.delete)
	}
}

func (h *ProductHandler) list(c *gin.Context) {
	products, err := h.queries.ListCategoryProducts(c.Request.Context())
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) create(c *gin.Context) {
	var req CreateProductRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		responses.Error(c, h.logger, err)
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), *req.BrandID, *req.CategoryID, *req.Price)
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) patch(c *gin.Context) {
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

	product, err := h.products.PatchProduct(c.Request.Context(), id, patch)
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	if _, err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		responses.Error(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
