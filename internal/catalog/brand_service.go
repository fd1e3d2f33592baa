package catalog

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Aidin1998/pricecatalog/internal/models"
	"github.com/Aidin1998/pricecatalog/internal/repository"
	"github.com/Aidin1998/pricecatalog/pkg/errors"
	"github.com/Aidin1998/pricecatalog/pkg/jsonpatch"
	"github.com/Aidin1998/pricecatalog/pkg/metrics"
	"github.com/Aidin1998/pricecatalog/pkg/validation"
)

// BrandUpdate is the patchable representation of a brand.
type BrandUpdate struct {
	Name *string `json:"name"`
}

// BrandService handles brand commands.
type BrandService struct {
	db        *gorm.DB
	brands    *repository.BrandRepository
	products  *repository.ProductRepository
	cache     Cache
	validator *validation.Validator
	logger    *zap.Logger
}

func NewBrandService(db *gorm.DB, brands *repository.BrandRepository, products *repository.ProductRepository,
	c Cache, v *validation.Validator, logger *zap.Logger) *BrandService {
	return &BrandService{
		db:        db,
		brands:    brands,
		products:  products,
		cache:     c,
		validator: v,
		logger:    logger.With(zap.String("component", "brand_service")),
	}
}

// ListBrands returns every brand ordered by ID.
func (s *BrandService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.brands.FindAll(ctx)
}

// CreateBrand registers a brand under a unique, non-blank name.
func (s *BrandService) CreateBrand(ctx context.Context, name string) (*models.Brand, error) {
	name = s.validator.SanitizeName(name)
	if name == "" {
		return nil, errors.InvalidBrandName
	}

	brand := &models.Brand{Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		brands := s.brands.WithTx(tx)
		if err := s.ensureUnique(ctx, brands, name, 0); err != nil {
			return err
		}
		return brands.Create(ctx, brand)
	})
	if err != nil {
		return nil, duplicateName(err)
	}

	s.written(ctx, "create", brand)
	return brand, nil
}

// UpdateBrand renames a brand.
func (s *BrandService) UpdateBrand(ctx context.Context, id int64, name string) (*models.Brand, error) {
	name = s.validator.SanitizeName(name)
	if name == "" {
		return nil, errors.InvalidBrandName
	}

	return s.update(ctx, "update", id, func(*models.Brand) (string, error) {
		return name, nil
	})
}

// PatchBrand applies a JSON Patch document to the brand's current
// representation and stores the result. The patch is applied to the
// locked row.
func (s *BrandService) PatchBrand(ctx context.Context, id int64, patch []byte) (*models.Brand, error) {
	return s.update(ctx, "patch", id, func(current *models.Brand) (string, error) {
		var update BrandUpdate
		if err := jsonpatch.Apply(BrandUpdate{Name: &current.Name}, patch, &update); err != nil {
			return "", errors.InvalidPatchRequest.Wrap(err)
		}
		if update.Name == nil {
			return "", errors.InvalidBrandName
		}
		name := s.validator.SanitizeName(*update.Name)
		if name == "" {
			return "", errors.InvalidBrandName
		}
		return name, nil
	})
}

// update locks the brand row, derives the new name from it and saves it.
func (s *BrandService) update(ctx context.Context, op string, id int64, rename func(*models.Brand) (string, error)) (*models.Brand, error) {
	var brand *models.Brand
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		brands := s.brands.WithTx(tx)
		var err error
		brand, err = brands.FindByIDForUpdate(ctx, id)
		if err != nil {
			return orNotFound(err, errors.BrandNotFound)
		}
		name, err := rename(brand)
		if err != nil {
			return err
		}
		if err := s.ensureUnique(ctx, brands, name, id); err != nil {
			return err
		}
		brand.Name = name
		return brands.Save(ctx, brand)
	})
	if err != nil {
		return nil, duplicateName(err)
	}

	s.written(ctx, op, brand)
	return brand, nil
}

// DeleteBrand removes a brand together with its products.
func (s *BrandService) DeleteBrand(ctx context.Context, id int64) (*models.Brand, error) {
	var (
		brand   *models.Brand
		removed int64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		brand, err = s.brands.WithTx(tx).FindByID(ctx, id)
		if err != nil {
			return orNotFound(err, errors.BrandNotFound)
		}
		if removed, err = s.products.WithTx(tx).DeleteByBrand(ctx, id); err != nil {
			return err
		}
		return s.brands.WithTx(tx).Delete(ctx, brand)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("brand products removed", zap.Int64("brand_id", id), zap.Int64("products", removed))
	s.written(ctx, "delete", brand)
	return brand, nil
}

func (s *BrandService) ensureUnique(ctx context.Context, brands *repository.BrandRepository, name string, excludeID int64) error {
	exists, err := brands.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return errors.DuplicateBrandName
	}
	return nil
}

func (s *BrandService) written(ctx context.Context, op string, brand *models.Brand) {
	s.cache.InvalidateAll(ctx)
	metrics.CatalogWrites.WithLabelValues("brand", op).Inc()
	s.logger.Info("brand written", zap.String("op", op), zap.Int64("brand_id", brand.ID), zap.String("name", brand.Name))
}

// duplicateName maps a unique constraint violation that slipped past the
// existence check (concurrent create) to DuplicateBrandName.
func duplicateName(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.DuplicateBrandName.Wrap(err)
	}
	return err
}
