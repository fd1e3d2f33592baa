// Package catalog implements the brand and product commands, the catalog
// queries and the pricing use cases built on them.
package catalog

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Aidin1998/pricecatalog/internal/cache"
	"github.com/Aidin1998/pricecatalog/internal/repository"
	"github.com/Aidin1998/pricecatalog/pkg/errors"
	"github.com/Aidin1998/pricecatalog/pkg/validation"
)

// Cache is the part of the cache manager the catalog depends on.
type Cache interface {
	GetOrLoad(ctx context.Context, cache, key string, dst any, load cache.Loader) error
	InvalidateAll(ctx context.Context)
}

// Catalog bundles every service sharing one database and cache.
type Catalog struct {
	Brands     *BrandService
	Products   *ProductService
	Categories *CategoryQueryService
	Queries    *ProductQueryService
	Pricing    *PricingService
}

// New wires the catalog services.
func New(db *gorm.DB, c Cache, v *validation.Validator, logger *zap.Logger) *Catalog {
	brands := repository.NewBrandRepository(db, logger)
	categories := repository.NewCategoryRepository(db, logger)
	products := repository.NewProductRepository(db, logger)

	categoryQueries := NewCategoryQueryService(categories)
	productQueries := NewProductQueryService(categories, products)

	return &Catalog{
		Brands:     NewBrandService(db, brands, products, c, v, logger),
		Products:   NewProductService(db, brands, categories, products, c, logger),
		Categories: categoryQueries,
		Queries:    productQueries,
		Pricing:    NewPricingService(categoryQueries, productQueries, c, logger),
	}
}

// orNotFound maps a missing row to the given business error.
func orNotFound(err error, notFound *errors.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
