package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Aidin1998/pricecatalog/internal/models"
	"github.com/Aidin1998/pricecatalog/internal/repository"
	"github.com/Aidin1998/pricecatalog/pkg/errors"
)

// CategoryQueryService answers category reads.
type CategoryQueryService struct {
	categories *repository.CategoryRepository
}

func NewCategoryQueryService(categories *repository.CategoryRepository) *CategoryQueryService {
	return &CategoryQueryService{categories: categories}
}

func (s *CategoryQueryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.FindAll(ctx)
}

func (s *CategoryQueryService) CountCategories(ctx context.Context) (int64, error) {
	return s.categories.Count(ctx)
}

// GetByName returns CategoryNotFound for unknown names.
func (s *CategoryQueryService) GetByName(ctx context.Context, name string) (*models.Category, error) {
	category, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return nil, orNotFound(err, errors.CategoryNotFound)
	}
	return category, nil
}

// CategoryProduct is one product as listed under its category.
type CategoryProduct struct {
	CategoryName string          `json:"categoryName"`
	BrandName    string          `json:"brandName"`
	Price        decimal.Decimal `json:"price"`
}

// ProductQueryService answers product reads.
type ProductQueryService struct {
	categories *repository.CategoryRepository
	products   *repository.ProductRepository
}

func NewProductQueryService(categories *repository.CategoryRepository, products *repository.ProductRepository) *ProductQueryService {
	return &ProductQueryService{categories: categories, products: products}
}

// ListCategoryProducts lists the products of every category, categories by ID.
func (s *ProductQueryService) ListCategoryProducts(ctx context.Context) ([]CategoryProduct, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CategoryProduct, 0)
	for _, category := range categories {
		products, err := s.products.FindByCategory(ctx, category.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			out = append(out, CategoryProduct{
				CategoryName: category.Name,
				BrandName:    p.Brand.Name,
				Price:        p.Price,
			})
		}
	}
	return out, nil
}

// CheapestProductPerCategory picks one cheapest product for each category
// in categoryIDs that has products, in input order. When several products
// share the lowest price the most recently registered one wins.
func (s *ProductQueryService) CheapestProductPerCategory(ctx context.Context, categoryIDs []int64) ([]models.Product, error) {
	mins, err := s.products.MinPricesByCategories(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	minByCategory := make(map[int64]decimal.Decimal, len(mins))
	for _, m := range mins {
		minByCategory[m.CategoryID] = m.MinPrice
	}

	out := make([]models.Product, 0, len(mins))
	for _, id := range categoryIDs {
		price, ok := minByCategory[id]
		if !ok {
			continue
		}
		products, err := s.products.FindByCategoryIDAndPrice(ctx, id, price)
		if err != nil {
			return nil, err
		}
		if len(products) > 0 {
			out = append(out, products[0])
		}
	}
	return out, nil
}

func (s *ProductQueryService) CheapestPerBrandAndCategory(ctx context.Context) ([]models.BrandCategoryPrice, error) {
	return s.products.CheapestPerBrandAndCategory(ctx)
}

// CheapestByCategoryName lists every product at the category's lowest price.
func (s *ProductQueryService) CheapestByCategoryName(ctx context.Context, name string) ([]models.Product, error) {
	price, err := s.products.MinPriceByCategoryName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.atPrice(ctx, name, price)
}

// MostExpensiveByCategoryName lists every product at the category's highest price.
func (s *ProductQueryService) MostExpensiveByCategoryName(ctx context.Context, name string) ([]models.Product, error) {
	price, err := s.products.MaxPriceByCategoryName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.atPrice(ctx, name, price)
}

func (s *ProductQueryService) atPrice(ctx context.Context, name string, price decimal.NullDecimal) ([]models.Product, error) {
	if !price.Valid {
		return []models.Product{}, nil
	}
	return s.products.FindByCategoryNameAndPrice(ctx, name, price.Decimal)
}
