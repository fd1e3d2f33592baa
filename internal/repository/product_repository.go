package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Aidin1998/pricecatalog/internal/models"
)

// ProductRepository stores products and answers the price aggregates.
type ProductRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{db: db, logger: logger}
}

// WithTx returns a repository bound to tx.
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx, logger: r.logger}
}

// Create inserts product without touching its brand or category rows.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

// Save updates product columns; associations are left alone.
func (r *ProductRepository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Brand").
		Preload("Category").
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate loads a product with its brand and category and holds
// an exclusive lock on the product row.
func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := lock(r.db.WithContext(ctx), lockUpdate).
		Preload("Brand").
		Preload("Category").
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) Delete(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Delete(product).Error
}

// DeleteByBrand removes every product of a brand.
func (r *ProductRepository) DeleteByBrand(ctx context.Context, brandID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("brand_id = ?", brandID).Delete(&models.Product{})
	return res.RowsAffected, res.Error
}

// FindByCategory lists a category's products by ID.
func (r *ProductRepository) FindByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Brand").
		Preload("Category").
		Where("category_id = ?", categoryID).
		Order("id").
		Find(&products).Error
	return products, err
}

// MinPricesByCategories returns the lowest price of each given category
// that has at least one product.
func (r *ProductRepository) MinPricesByCategories(ctx context.Context, categoryIDs []int64) ([]models.CategoryMinPrice, error) {
	var rows []models.CategoryMinPrice
	if len(categoryIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("category_id, MIN(price) AS min_price").
		Where("category_id IN ?", categoryIDs).
		Group("category_id").
		Scan(&rows).Error
	return rows, err
}

// FindByCategoryIDAndPrice lists the products of a category at exactly
// price, newest first.
func (r *ProductRepository) FindByCategoryIDAndPrice(ctx context.Context, categoryID int64, price decimal.Decimal) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Brand").
		Preload("Category").
		Where("category_id = ? AND price = ?", categoryID, price).
		Order("id DESC").
		Find(&products).Error
	return products, err
}

const cheapestPerBrandAndCategorySQL = `
SELECT b.id AS brand_id, b.name AS brand_name, c.id AS category_id, c.name AS category_name, MIN(p.price) AS price
FROM products p
         JOIN brands b ON b.id = p.brand_id
         JOIN categories c ON c.id = p.category_id`

// CheapestPerBrandAndCategory returns each brand's lowest price in every
// category it sells in, ordered by brand ID then category ID.
func (r *ProductRepository) CheapestPerBrandAndCategory(ctx context.Context) ([]models.BrandCategoryPrice, error) {
	var rows []models.BrandCategoryPrice
	err := r.db.WithContext(ctx).
		Raw(cheapestPerBrandAndCategorySQL + `
GROUP BY b.id, b.name, c.id, c.name
ORDER BY b.id, c.id`).
		Scan(&rows).Error
	return rows, err
}

// MinPriceByCategoryName is invalid (Valid == false) when the category has no products.
func (r *ProductRepository) MinPriceByCategoryName(ctx context.Context, name string) (decimal.NullDecimal, error) {
	return r.priceByCategoryName(ctx, "MIN", name)
}

// MaxPriceByCategoryName is invalid (Valid == false) when the category has no products.
func (r *ProductRepository) MaxPriceByCategoryName(ctx context.Context, name string) (decimal.NullDecimal, error) {
	return r.priceByCategoryName(ctx, "MAX", name)
}

func (r *ProductRepository) priceByCategoryName(ctx context.Context, fn, name string) (decimal.NullDecimal, error) {
	var price decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Raw(`SELECT `+fn+`(p.price) FROM products p JOIN categories c ON c.id = p.category_id WHERE c.name = ?`, name).
		Row().
		Scan(&price)
	return price, err
}

// FindByCategoryNameAndPrice lists every product of the named category at
// exactly price, ordered by brand name then ID.
func (r *ProductRepository) FindByCategoryNameAndPrice(ctx context.Context, name string, price decimal.Decimal) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Select("products.*").
		Joins("JOIN brands ON brands.id = products.brand_id").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("categories.name = ? AND products.price = ?", name, price).
		Order("brands.name, products.id").
		Preload("Brand").
		Preload("Category").
		Find(&products).Error
	return products, err
}
