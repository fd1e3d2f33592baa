package catalog

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Aidin1998/pricecatalog/internal/cache"
)

// CategoryPriceItem is the cheapest product of one category.
type CategoryPriceItem struct {
	CategoryID   int64           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	BrandID      int64           `json:"brandId"`
	BrandName    string          `json:"brandName"`
	Price        decimal.Decimal `json:"price"`
}

// CategoryPricing lists the cheapest product per category and their sum.
type CategoryPricing struct {
	Items      []CategoryPriceItem `json:"items"`
	TotalPrice decimal.Decimal     `json:"totalPrice"`
}

// CategoryPrice is a brand's cheapest price within a category.
type CategoryPrice struct {
	CategoryName string          `json:"categoryName"`
	Price        decimal.Decimal `json:"price"`
}

// BrandTotal is a brand's cheapest item per category and their sum.
type BrandTotal struct {
	BrandName  string          `json:"brandName"`
	Categories []CategoryPrice `json:"categories"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// BrandLowestPrice holds the brand with the lowest total, nil when no
// brand sells in every category.
type BrandLowestPrice struct {
	LowestPrice *BrandTotal `json:"lowestPrice"`
}

// BrandPrice is one brand's price.
type BrandPrice struct {
	Brand string          `json:"brand"`
	Price decimal.Decimal `json:"price"`
}

// PriceSummary lists the brands at the lowest and highest price of a category.
type PriceSummary struct {
	Category     string       `json:"category"`
	LowestPrice  []BrandPrice `json:"lowestPrice"`
	HighestPrice []BrandPrice `json:"highestPrice"`
}

// PricingService answers the pricing questions, caching each answer.
type PricingService struct {
	categories *CategoryQueryService
	products   *ProductQueryService
	cache      Cache
	logger     *zap.Logger
}

func NewPricingService(categories *CategoryQueryService, products *ProductQueryService, c Cache, logger *zap.Logger) *PricingService {
	return &PricingService{
		categories: categories,
		products:   products,
		cache:      c,
		logger:     logger.With(zap.String("component", "pricing")),
	}
}

// LowestPriceByCategory returns the cheapest product of every category and
// the total of those prices.
func (s *PricingService) LowestPriceByCategory(ctx context.Context) (*CategoryPricing, error) {
	var out CategoryPricing
	err := s.cache.GetOrLoad(ctx, cache.CategoryPricing, "all", &out, func(ctx context.Context) (any, error) {
		return s.lowestPriceByCategory(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PricingService) lowestPriceByCategory(ctx context.Context) (*CategoryPricing, error) {
	result := &CategoryPricing{Items: []CategoryPriceItem{}, TotalPrice: decimal.Zero}

	categories, err := s.categories.ListCategories(ctx)
	if err != nil || len(categories) == 0 {
		return result, err
	}
	ids := make([]int64, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}

	products, err := s.products.CheapestProductPerCategory(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		result.Items = append(result.Items, CategoryPriceItem{
			CategoryID:   p.Category.ID,
			CategoryName: p.Category.Name,
			BrandID:      p.Brand.ID,
			BrandName:    p.Brand.Name,
			Price:        p.Price,
		})
		result.TotalPrice = result.TotalPrice.Add(p.Price)
	}
	return result, nil
}

// LowestTotalBrand finds the brand whose cheapest items across all
// categories cost the least in total. Only brands selling in every
// category qualify; equal totals go to the brand name sorting first.
func (s *PricingService) LowestTotalBrand(ctx context.Context) (*BrandLowestPrice, error) {
	var out BrandLowestPrice
	err := s.cache.GetOrLoad(ctx, cache.BrandLowestPrice, "lowest", &out, func(ctx context.Context) (any, error) {
		return s.lowestTotalBrand(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PricingService) lowestTotalBrand(ctx context.Context) (*BrandLowestPrice, error) {
	rows, err := s.products.CheapestPerBrandAndCategory(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &BrandLowestPrice{}, nil
	}

	totalCategories, err := s.categories.CountCategories(ctx)
	if err != nil {
		return nil, err
	}

	// rows arrive ordered by brand, so each brand is one contiguous run
	var best *BrandTotal
	for start := 0; start < len(rows); {
		end := start
		for end < len(rows) && rows[end].BrandID == rows[start].BrandID {
			end++
		}
		run := rows[start:end]
		start = end

		if int64(len(run)) != totalCategories {
			continue
		}
		candidate := &BrandTotal{BrandName: run[0].BrandName, TotalPrice: decimal.Zero}
		for _, r := range run {
			candidate.Categories = append(candidate.Categories, CategoryPrice{CategoryName: r.CategoryName, Price: r.Price})
			candidate.TotalPrice = candidate.TotalPrice.Add(r.Price)
		}
		if best == nil || candidate.TotalPrice.LessThan(best.TotalPrice) ||
			(candidate.TotalPrice.Equal(best.TotalPrice) && candidate.BrandName < best.BrandName) {
			best = candidate
		}
	}

	if best == nil {
		s.logger.Debug("no brand sells in every category", zap.Int64("categories", totalCategories))
		return &BrandLowestPrice{}, nil
	}
	sort.Slice(best.Categories, func(i, j int) bool {
		return best.Categories[i].CategoryName < best.Categories[j].CategoryName
	})
	return &BrandLowestPrice{LowestPrice: best}, nil
}

// CategoryPriceSummary lists the brands at the lowest and at the highest
// price of the named category.
func (s *PricingService) CategoryPriceSummary(ctx context.Context, categoryName string) (*PriceSummary, error) {
	var out PriceSummary
	err := s.cache.GetOrLoad(ctx, cache.PriceSummary, categoryName, &out, func(ctx context.Context) (any, error) {
		return s.categoryPriceSummary(ctx, categoryName)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PricingService) categoryPriceSummary(ctx context.Context, categoryName string) (*PriceSummary, error) {
	if _, err := s.categories.GetByName(ctx, categoryName); err != nil {
		return nil, err
	}

	cheapest, err := s.products.CheapestByCategoryName(ctx, categoryName)
	if err != nil {
		return nil, err
	}
	priciest, err := s.products.MostExpensiveByCategoryName(ctx, categoryName)
	if err != nil {
		return nil, err
	}

	summary := &PriceSummary{
		Category:     categoryName,
		LowestPrice:  make([]BrandPrice, 0, len(cheapest)),
		HighestPrice: make([]BrandPrice, 0, len(priciest)),
	}
	for _, p := range cheapest {
		summary.LowestPrice = append(summary.LowestPrice, BrandPrice{Brand: p.Brand.Name, Price: p.Price})
	}
	for _, p := range priciest {
		summary.HighestPrice = append(summary.HighestPrice, BrandPrice{Brand: p.Brand.Name, Price: p.Price})
	}
	return summary, nil
}
