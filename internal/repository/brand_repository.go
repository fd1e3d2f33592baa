package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Aidin1998/pricecatalog/internal/models"
)

// BrandRepository stores brands.
type BrandRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewBrandRepository creates a new brand repository
func NewBrandRepository(db *gorm.DB, logger *zap.Logger) *BrandRepository {
	return &BrandRepository{db: db, logger: logger}
}

// WithTx returns a repository bound to tx.
func (r *BrandRepository) WithTx(tx *gorm.DB) *BrandRepository {
	return &BrandRepository{db: tx, logger: r.logger}
}

// Create inserts a new brand
func (r *BrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Create(brand).Error
}

// Save updates every column of brand
func (r *BrandRepository) Save(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Save(brand).Error
}

// FindByID retrieves a brand by ID
func (r *BrandRepository) FindByID(ctx context.Context, id int64) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// FindByIDForUpdate retrieves a brand and holds an exclusive lock on its
// row until the surrounding transaction ends.
func (r *BrandRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Brand, error) {
	var brand models.Brand
	if err := lock(r.db.WithContext(ctx), lockUpdate).First(&brand, id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// FindByIDForShare retrieves a brand and holds a shared lock on its row
// until the surrounding transaction ends.
func (r *BrandRepository) FindByIDForShare(ctx context.Context, id int64) (*models.Brand, error) {
	var brand models.Brand
	if err := lock(r.db.WithContext(ctx), lockShare).First(&brand, id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// FindAll lists brands by ID
func (r *BrandRepository) FindAll(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	err := r.db.WithContext(ctx).Order("id").Find(&brands).Error
	return brands, err
}

// ExistsByName reports whether another brand (id != excludeID) already uses name.
func (r *BrandRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Brand{}).
		Where("name = ? AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}

// Delete removes a brand
func (r *BrandRepository) Delete(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Delete(brand).Error
}
