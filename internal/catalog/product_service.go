package catalog

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Aidin1998/pricecatalog/internal/models"
	"github.com/Aidin1998/pricecatalog/internal/repository"
	"github.com/Aidin1998/pricecatalog/pkg/errors"
	"github.com/Aidin1998/pricecatalog/pkg/jsonpatch"
	"github.com/Aidin1998/pricecatalog/pkg/metrics"
)

// ProductUpdate carries the fields to change; nil fields are left as they are.
type ProductUpdate struct {
	CategoryID *int64           `json:"categoryId"`
	BrandID    *int64           `json:"brandId"`
	Price      *decimal.Decimal `json:"price"`
}

// ProductService handles product commands.
type ProductService struct {
	db         *gorm.DB
	brands     *repository.BrandRepository
	categories *repository.CategoryRepository
	products   *repository.ProductRepository
	cache      Cache
	logger     *zap.Logger
}

func NewProductService(db *gorm.DB, brands *repository.BrandRepository, categories *repository.CategoryRepository,
	products *repository.ProductRepository, c Cache, logger *zap.Logger) *ProductService {
	return &ProductService{
		db:         db,
		brands:     brands,
		categories: categories,
		products:   products,
		cache:      c,
		logger:     logger.With(zap.String("component", "product_service")),
	}
}

// CreateProduct registers a product of a brand in a category.
func (s *ProductService) CreateProduct(ctx context.Context, brandID, categoryID int64, price decimal.Decimal) (*models.Product, error) {
	var product *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := s.categories.WithTx(tx).FindByIDForShare(ctx, categoryID)
		if err != nil {
			return orNotFound(err, errors.CategoryNotFound)
		}
		brand, err := s.brands.WithTx(tx).FindByIDForShare(ctx, brandID)
		if err != nil {
			return orNotFound(err, errors.BrandNotFound)
		}
		if price.IsNegative() {
			return errors.InvalidPrice
		}

		product = &models.Product{
			Price:      price,
			BrandID:    brand.ID,
			CategoryID: category.ID,
			Brand:      *brand,
			Category:   *category,
		}
		return s.products.WithTx(tx).Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.written(ctx, "create", product)
	return product, nil
}

// UpdateProduct changes the present fields of update under a row lock.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, update ProductUpdate) (*models.Product, error) {
	return s.update(ctx, "update", id, func(*models.Product) (ProductUpdate, error) {
		return update, nil
	})
}

// PatchProduct applies a JSON Patch document to the product's current
// {categoryId, brandId, price} and updates what changed. The patch is
// applied to the locked row.
func (s *ProductService) PatchProduct(ctx context.Context, id int64, patch []byte) (*models.Product, error) {
	return s.update(ctx, "patch", id, func(current *models.Product) (ProductUpdate, error) {
		doc := ProductUpdate{
			CategoryID: &current.CategoryID,
			BrandID:    &current.BrandID,
			Price:      &current.Price,
		}
		var update ProductUpdate
		if err := jsonpatch.Apply(doc, patch, &update); err != nil {
			return ProductUpdate{}, errors.InvalidPatchRequest.Wrap(err)
		}
		return update, nil
	})
}

// update locks the product row, derives the change from it and applies it.
func (s *ProductService) update(ctx context.Context, op string, id int64, change func(*models.Product) (ProductUpdate, error)) (*models.Product, error) {
	var product *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = s.products.WithTx(tx).FindByIDForUpdate(ctx, id)
		if err != nil {
			return orNotFound(err, errors.ProductNotFound)
		}
		update, err := change(product)
		if err != nil {
			return err
		}

		if update.CategoryID != nil {
			category, err := s.categories.WithTx(tx).FindByIDForShare(ctx, *update.CategoryID)
			if err != nil {
				return orNotFound(err, errors.CategoryNotFound)
			}
			product.CategoryID = category.ID
			product.Category = *category
		}
		if update.BrandID != nil {
			brand, err := s.brands.WithTx(tx).FindByIDForShare(ctx, *update.BrandID)
			if err != nil {
				return orNotFound(err, errors.BrandNotFound)
			}
			product.BrandID = brand.ID
			product.Brand = *brand
		}
		if update.Price != nil {
			if update.Price.IsNegative() {
				return errors.InvalidPrice
			}
			product.Price = *update.Price
		}

		return s.products.WithTx(tx).Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.written(ctx, op, product)
	return product, nil
}

// DeleteProduct removes a product and returns what was removed.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = s.products.WithTx(tx).FindByIDForUpdate(ctx, id)
		if err != nil {
			return orNotFound(err, errors.ProductNotFound)
		}
		return s.products.WithTx(tx).Delete(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.written(ctx, "delete", product)
	return product, nil
}

func (s *ProductService) written(ctx context.Context, op string, product *models.Product) {
	s.cache.InvalidateAll(ctx)
	metrics.CatalogWrites.WithLabelValues("product", op).Inc()
	s.logger.Info("product written",
		zap.String("op", op),
		zap.Int64("product_id", product.ID),
		zap.Int64("brand_id", product.BrandID),
		zap.Int64("category_id", product.CategoryID),
		zap.String("price", product.Price.String()))
}
